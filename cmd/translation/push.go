package main

import (
	"github.com/spf13/cobra"

	translation "github.com/revenuewire/translation"
)

func newPushCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Publish finished translations back into the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			module, err := buildModule(ctx, opts)
			if err != nil {
				return err
			}
			defer module.Close()

			return module.Commands().Publish.Execute(ctx, translation.PublishCommand{})
		},
	}
}
