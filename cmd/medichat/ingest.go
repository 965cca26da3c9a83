package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"medichat/internal/service"
)

func newIngestCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file.pdf>...",
		Short: "Index PDF documents",
		Long: `Extract, chunk and embed the given PDFs into the vector index.
Chunks are added to the existing index; an identical corpus reuses it.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploads := make([]service.Upload, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				uploads = append(uploads, service.Upload{Name: filepath.Base(path), Data: data})
			}

			a, err := openApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.cleanup()

			res, err := a.svc.ProcessDocuments(cmd.Context(), uploads)
			if err != nil {
				return err
			}

			for _, f := range res.Files {
				if f.Err != nil {
					cmd.Printf("  ✗ %s: %v\n", f.Name, f.Err)
					continue
				}
				cmd.Printf("  ✓ %s (%d chunks)\n", f.Name, f.Chunks)
			}
			if res.Reused {
				cmd.Printf("Index unchanged, reusing %d chunks\n", res.TotalChunks)
			} else {
				cmd.Printf("Indexed %d new chunks, %d total\n", res.NewChunks, res.TotalChunks)
			}
			return nil
		},
	}
}
