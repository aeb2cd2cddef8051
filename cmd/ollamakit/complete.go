package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	_ "github.com/randalmurphal/ollamakit/ollama"
	"github.com/randalmurphal/ollamakit/provider"
)

func newCompleteCmd(a *app) *cobra.Command {
	var (
		f      genFlags
		name   string
		stream bool
	)

	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Generate through the provider interface",
		Long: `complete sends the prompt through the provider registry instead of the
raw generation client. The provider is taken from --provider or
OLLAMAKIT_PROVIDER; when neither is set the only registered provider is used.
Token usage is logged at info level.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, prompt, err := f.resolveInput(cmd, a)
			if err != nil {
				return err
			}
			format, err := f.formatValue()
			if err != nil {
				return err
			}

			cfg := a.providerConfig(model)
			if name != "" {
				cfg.Provider = name
			}
			client, err := provider.Open(cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			req := provider.Request{
				SystemPrompt:   f.system,
				Messages:       []provider.Message{provider.NewTextMessage(provider.RoleUser, prompt)},
				ResponseSchema: format,
			}
			out := cmd.OutOrStdout()

			if !stream {
				resp, err := client.Complete(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, resp.Content)
				a.logUsage(client.Provider(), resp.Model, resp.Usage)
				return nil
			}

			if !client.Capabilities().Streaming {
				return fmt.Errorf("provider %s does not stream", client.Provider())
			}
			chunks, err := client.Stream(cmd.Context(), req)
			if err != nil {
				return err
			}
			for chunk := range chunks {
				if chunk.Error != nil {
					fmt.Fprintln(out)
					return chunk.Error
				}
				fmt.Fprint(out, chunk.Content)
				if chunk.Done && chunk.Usage != nil {
					a.logUsage(client.Provider(), model, *chunk.Usage)
				}
			}
			fmt.Fprintln(out)
			return cmd.Context().Err()
		},
	}

	f.registerInput(cmd)
	cmd.Flags().StringVar(&name, "provider", "", "registered provider name (default: OLLAMAKIT_PROVIDER or the only one)")
	cmd.Flags().BoolVar(&stream, "stream", false, "print the response as it arrives")
	return cmd
}

// providerConfig starts from the OLLAMAKIT_* environment and applies the
// resolved settings, so file and flag values win over raw env.
func (a *app) providerConfig(model string) provider.Config {
	cfg := provider.FromEnv()
	cfg.Model = model
	cfg.SystemPrompt = a.settings.System
	cfg.Timeout = a.settings.Timeout
	cfg = cfg.WithOption("host", a.settings.Host)
	if a.settings.MaxLineSize > 0 {
		cfg = cfg.WithOption("max_line_size", a.settings.MaxLineSize)
	}
	return cfg
}

func (a *app) logUsage(name, model string, usage provider.TokenUsage) {
	a.logger.Info("token usage",
		slog.String("provider", name),
		slog.String("model", model),
		slog.Int("input_tokens", usage.InputTokens),
		slog.Int("output_tokens", usage.OutputTokens))
}
