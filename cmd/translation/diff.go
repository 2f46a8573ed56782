package main

import (
	"github.com/spf13/cobra"

	translation "github.com/revenuewire/translation"
	"github.com/revenuewire/translation/internal/domain"
)

func newDiffCmd(opts *globalOptions) *cobra.Command {
	var providerName string

	cmd := &cobra.Command{
		Use:   "diff <target-language>...",
		Short: "Queue untranslated texts into provider-sized projects",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			module, err := buildModule(ctx, opts)
			if err != nil {
				return err
			}
			defer module.Close()

			for _, language := range args {
				err := module.Commands().Diff.Execute(ctx, translation.DiffCommand{
					TargetLanguage: language,
					Provider:       providerName,
				})
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", string(domain.ProviderGCT), "Translation provider (OHT or GCT)")
	return cmd
}
