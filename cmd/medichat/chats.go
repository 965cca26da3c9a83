package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"medichat/internal/service"
)

func newChatsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "Manage saved chats",
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.cleanup()

			entries, err := a.svc.RecentChats(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				cmd.Println("No saved chats.")
				return nil
			}
			for _, e := range entries {
				cmd.Printf("%s  %s\n", e.ID, e.Title)
			}
			return nil
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", service.DefaultRecentChats, "number of chats to show")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the messages of a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.cleanup()

			messages, err := a.svc.History(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(messages) == 0 {
				cmd.Printf("Chat %s is empty.\n", args[0])
				return nil
			}
			for _, m := range messages {
				cmd.Printf("[%s] %s: %s\n", m.Timestamp, strings.ToUpper(m.Role), m.Content)
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear <id>",
		Short: "Remove all messages from a chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.cleanup()

			sess, err := a.svc.OpenSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.svc.Clear(cmd.Context(), sess); err != nil {
				return fmt.Errorf("failed to clear chat: %w", err)
			}
			cmd.Printf("Cleared chat %s\n", args[0])
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a chat and its index entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.cleanup()

			if err := a.svc.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete chat: %w", err)
			}
			cmd.Printf("Deleted chat %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd, clearCmd, deleteCmd)
	return cmd
}
