package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/ollamakit/generate"
	"github.com/randalmurphal/ollamakit/jsonl"
)

func newTailCmd(a *app) *cobra.Command {
	var (
		fromStart bool
		noFollow  bool
	)

	cmd := &cobra.Command{
		Use:   "tail FILE",
		Short: "Print the text of a transcript written with --record",
		Long: `tail prints the response text of each chunk in a transcript file.
By default it follows the file and prints chunks as they are appended; a
blank line separates generations.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := jsonl.NewReader(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			out := cmd.OutOrStdout()
			if noFollow {
				docs, err := r.ReadAll()
				if err != nil {
					return err
				}
				for _, doc := range docs {
					printChunk(out, a.logger, doc)
				}
				return nil
			}

			for doc := range r.Tail(cmd.Context(), fromStart) {
				printChunk(out, a.logger, doc)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromStart, "from-start", false, "print chunks already in the file before following")
	cmd.Flags().BoolVar(&noFollow, "no-follow", false, "print the whole file and exit")
	return cmd
}

func printChunk(out io.Writer, logger *slog.Logger, doc json.RawMessage) {
	var chunk generate.Chunk
	if err := json.Unmarshal(doc, &chunk); err != nil {
		logger.Debug("skipping transcript line", slog.Any("error", err))
		return
	}
	fmt.Fprint(out, chunk.Response)
	if chunk.Done() {
		fmt.Fprint(out, "\n\n")
	}
}
