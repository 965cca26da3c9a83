package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "medichat",
		Short: "Chat with your medical documents",
		Long: `MediChat answers questions about uploaded medical PDFs.
Documents are split into chunks, embedded into a persisted vector index,
and the most relevant passages ground every answer from the chat model.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")

	cmd.AddCommand(
		newServeCmd(&configPath),
		newIngestCmd(&configPath),
		newAskCmd(&configPath),
		newChatsCmd(&configPath),
		newStatusCmd(&configPath),
	)
	return cmd
}
