package main

import (
	"strings"

	"github.com/spf13/cobra"

	"medichat/internal/service"
)

func newAskCmd(configPath *string) *cobra.Command {
	var (
		chatID       string
		showPassages bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the indexed documents",
		Long: `Ask a question grounded in the indexed documents.
Without --chat a new conversation is started; its id is printed so it can be continued.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.cleanup()

			var sess *service.Session
			if chatID == "" {
				sess = a.svc.NewSession(ctx)
			} else if sess, err = a.svc.OpenSession(ctx, chatID); err != nil {
				return err
			}

			reply, err := a.svc.Send(ctx, sess, strings.Join(args, " "))
			if err != nil {
				return err
			}

			cmd.Printf("[%s] %s\n", reply.Timestamp, reply.Answer)
			if showPassages {
				for _, p := range reply.Passages {
					cmd.Printf("\n[%d] (score %.3f)\n%s\n", p.Rank, p.Score, p.Text)
				}
			}
			if reply.Title != "" {
				cmd.Printf("\nSaved as %q\n", reply.Title)
			}
			cmd.Printf("Chat: %s\n", sess.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&chatID, "chat", "", "continue the chat with this id")
	cmd.Flags().BoolVar(&showPassages, "passages", false, "print the retrieved passages")
	return cmd
}
