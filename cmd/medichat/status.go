package main

import (
	"github.com/spf13/cobra"
)

func newStatusCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the loaded index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.cleanup()

			st := a.svc.IndexStatus(cmd.Context())
			if !st.Loaded {
				cmd.Println("No documents indexed yet. Run 'medichat ingest' first.")
				return nil
			}
			cmd.Printf("Fingerprint: %s\n", st.Fingerprint)
			cmd.Printf("Chunks:      %d\n", st.Chunks)
			cmd.Printf("Chunk size:  min %d, max %d, mean %.2f, p95 %d runes\n",
				st.Stats.Min, st.Stats.Max, st.Stats.Mean, st.Stats.P95)
			cmd.Printf("Tokens:      ~%d\n", st.Stats.ApproxTokens)
			return nil
		},
	}
}
