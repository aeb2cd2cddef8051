// Command ollamakit sends a prompt to a local text-generation server and
// prints the generated text.
//
//	ollamakit stream -m llama3.1 -p "why is the sky blue?"
//	ollamakit buffered            # prompts for model and prompt
//	ollamakit single --format json -m llama3.1 -p "list three colors as JSON"
//	ollamakit tail runs.jsonl     # follow a transcript written with --record
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
