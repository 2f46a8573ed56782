package main

import (
	"github.com/spf13/cobra"

	translation "github.com/revenuewire/translation"
)

func newAddCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add [project-id]...",
		Short: "Submit pending projects to their providers",
		Long:  "Submits pending projects to their translation providers. Without arguments\nevery pending project is dispatched; with arguments only the named ones.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			module, err := buildModule(ctx, opts)
			if err != nil {
				return err
			}
			defer module.Close()

			if len(args) == 0 {
				return module.Commands().Dispatch.Execute(ctx, translation.DispatchCommand{})
			}
			for _, projectID := range args {
				err := module.Commands().Dispatch.Execute(ctx, translation.DispatchCommand{ProjectID: projectID})
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}
