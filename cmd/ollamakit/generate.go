package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/ollamakit/generate"
)

// genFlags are shared by the buffered, single and stream commands.
type genFlags struct {
	model  string
	prompt string
	system string
	format string
	record string
}

func (f *genFlags) register(cmd *cobra.Command) {
	f.registerInput(cmd)
	cmd.Flags().StringVar(&f.record, "record", "", "append decoded chunks to this JSONL file")
}

// registerInput adds the flags describing what to generate.
func (f *genFlags) registerInput(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.model, "model", "m", "", "model name, e.g. llama3.1 (prompted if empty)")
	flags.StringVarP(&f.prompt, "prompt", "p", "", `prompt text, "-" reads stdin (prompted if empty)`)
	flags.StringVar(&f.system, "system", "", "system prompt")
	flags.StringVar(&f.format, "format", "", `output format: "json" or a JSON schema file`)
}

// formatValue returns the "format" member for --format, or nil when unset.
func (f *genFlags) formatValue() (json.RawMessage, error) {
	switch f.format {
	case "":
		return nil, nil
	case "json":
		return json.RawMessage(`"json"`), nil
	}
	data, err := os.ReadFile(f.format)
	if err != nil {
		return nil, fmt.Errorf("read format schema: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("format schema %s is not valid JSON", f.format)
	}
	return json.RawMessage(data), nil
}

// requestOptions translates flags and configured defaults into request options.
func (f *genFlags) requestOptions(a *app) ([]generate.RequestOption, error) {
	var opts []generate.RequestOption

	system := f.system
	if system == "" {
		system = a.settings.System
	}
	if system != "" {
		opts = append(opts, generate.WithSystem(system))
	}

	format, err := f.formatValue()
	if err != nil {
		return nil, err
	}
	if format != nil {
		opts = append(opts, generate.WithFormat(format))
	}
	return opts, nil
}

// resolveInput fills the model and prompt, asking on stdin for what the
// flags and settings left empty.
func (f *genFlags) resolveInput(cmd *cobra.Command, a *app) (model, prompt string, err error) {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	model = f.model
	if model == "" {
		model = a.settings.Model
	}
	if model == "" {
		fmt.Fprint(out, "Enter model name (e.g., llama3.1): ")
		if model, err = readLine(in); err != nil {
			return "", "", fmt.Errorf("read model name: %w", err)
		}
		model = strings.TrimSpace(model)
	}

	switch f.prompt {
	case "-":
		data, err := io.ReadAll(in)
		if err != nil {
			return "", "", fmt.Errorf("read prompt: %w", err)
		}
		prompt = strings.TrimRight(string(data), "\r\n")
	case "":
		fmt.Fprint(out, "Enter your prompt: ")
		if prompt, err = readLine(in); err != nil {
			return "", "", fmt.Errorf("read prompt: %w", err)
		}
	default:
		prompt = f.prompt
	}
	return model, prompt, nil
}

// readLine returns one line without its terminator. A final line without a
// newline is accepted; an empty stream is an error.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", io.ErrUnexpectedEOF
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// job is one resolved generation request.
type job struct {
	client *generate.Client
	model  string
	prompt string
	opts   []generate.RequestOption
	close  func() error
}

// prepare resolves input and builds a client for one generation command.
func (a *app) prepare(cmd *cobra.Command, f *genFlags) (*job, error) {
	model, prompt, err := f.resolveInput(cmd, a)
	if err != nil {
		return nil, err
	}
	opts, err := f.requestOptions(a)
	if err != nil {
		return nil, err
	}
	client, closeFn, err := a.newClient(f.record)
	if err != nil {
		return nil, err
	}
	return &job{client: client, model: model, prompt: prompt, opts: opts, close: closeFn}, nil
}

func newBufferedCmd(a *app) *cobra.Command {
	f := &genFlags{}
	cmd := &cobra.Command{
		Use:   "buffered",
		Short: "Stream a generation, then print the whole text at once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			j, err := a.prepare(cmd, f)
			if err != nil {
				return err
			}
			defer j.close()

			chunks, err := j.client.GenerateBuffered(cmd.Context(), j.model, j.prompt, j.opts...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), generate.Concat(chunks))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newSingleCmd(a *app) *cobra.Command {
	f := &genFlags{}
	cmd := &cobra.Command{
		Use:   "single",
		Short: "Request one non-streamed response and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			j, err := a.prepare(cmd, f)
			if err != nil {
				return err
			}
			defer j.close()

			fmt.Fprintln(cmd.ErrOrStderr(), "Waiting for model response...")
			chunk, err := j.client.GenerateSingle(cmd.Context(), j.model, j.prompt, j.opts...)
			if err != nil {
				return err
			}
			text, err := chunk.Text()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newStreamCmd(a *app) *cobra.Command {
	f := &genFlags{}
	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Print the generation fragment by fragment as it arrives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			j, err := a.prepare(cmd, f)
			if err != nil {
				return err
			}
			defer j.close()

			stream, err := j.client.GenerateStreaming(cmd.Context(), j.model, j.prompt, j.opts...)
			if err != nil {
				return err
			}
			defer stream.Close()

			out := cmd.OutOrStdout()
			for text, err := range stream.Fragments() {
				if err != nil {
					fmt.Fprintln(out)
					return err
				}
				fmt.Fprint(out, text)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
