package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hrdesk/hrdesk/internal/agent"
	"github.com/hrdesk/hrdesk/internal/llm"
	"github.com/hrdesk/hrdesk/internal/session"
	"github.com/hrdesk/hrdesk/internal/telemetry"
)

func newChatCmd() *cobra.Command {
	var (
		message   string
		agentType string
		sessionID string
		model     string
		maxTokens int
		stream    bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send one message to an agent and print the response",
		Long:  "One-shot invocation: route a message to an agent, print the response, exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("--message is required")
			}
			if _, err := agent.ParseType(agentType); err != nil {
				return err
			}
			if model == "" {
				model = os.Getenv("HRDESK_MODEL")
			}

			level := telemetry.ParseLevel("warn")
			if verbose {
				level = telemetry.ParseLevel("debug")
			}
			logger := telemetry.NewLogger(os.Stderr, level)

			client, modelName := llm.NewClientForModel(model)
			sessions := session.NewStore()
			sessions.GetOrCreate(sessionID, "cli")

			router := agent.NewHRRouter(client, sessions,
				agent.WithModel(modelName),
				agent.WithMaxTokens(maxTokens),
				agent.WithLogger(logger),
			)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if stream {
				chunks, err := router.Stream(ctx, agentType, message, sessionID)
				if err != nil {
					return err
				}
				for chunk := range chunks {
					if chunk.Err != nil {
						return chunk.Err
					}
					fmt.Print(chunk.Text)
				}
				fmt.Println()
				return nil
			}

			response, err := router.Route(ctx, agentType, message, sessionID)
			if err != nil {
				return err
			}
			fmt.Println(response)
			return nil
		},
	}

	cmd.Flags().StringVar(&message, "message", "", "Message to send")
	cmd.Flags().StringVar(&agentType, "agent", "vacation", "Agent type: vacation, procedure, or timesheet")
	cmd.Flags().StringVar(&sessionID, "session", "cli-session", "Session ID for conversation context")
	cmd.Flags().StringVar(&model, "model", "", "Chat model (defaults to $HRDESK_MODEL, then mock)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 1024, "Response token cap")
	cmd.Flags().BoolVar(&stream, "stream", false, "Stream the response as it is generated")

	return cmd
}
