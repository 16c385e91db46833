package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newIndexCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "index <pdf>",
		Short: "Upload a syllabus PDF and replace the search index with its chunks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open syllabus: %w", err)
			}
			defer f.Close()

			result, err := app.Syllabus.Upload(cmd.Context(), filepath.Base(args[0]), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %s: %d chunks (syllabus #%d)\n",
				result.Filename, result.ChunksIndexed, result.SyllabusID)
			return nil
		},
	}
}

func newSearchCmd(app *App) *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Show the syllabus chunks closest to a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := app.Syllabus.Search(cmd.Context(), strings.Join(args, " "), topK)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No syllabus context found.")
				return nil
			}
			for i, r := range results {
				fmt.Fprintf(out, "%s %s\n%s\n\n",
					app.render(styleHeader, fmt.Sprintf("[%d] %s", i+1, r.ID)),
					app.render(styleDim, fmt.Sprintf("score=%.3f", r.Score)),
					r.Text,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&topK, "top-k", 5, "Number of chunks to show")
	return cmd
}
