package main

import (
	"github.com/spf13/cobra"

	translation "github.com/revenuewire/translation"
)

func newCommitCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "commit [project-id]...",
		Short: "Collect finished results from asynchronous providers",
		Long:  "Polls asynchronous providers for in-flight projects and commits finished\ntranslations into the queue. Without arguments every in-flight project is\npolled; with arguments only the named ones.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			module, err := buildModule(ctx, opts)
			if err != nil {
				return err
			}
			defer module.Close()

			if len(args) == 0 {
				return module.Commands().Reconcile.Execute(ctx, translation.ReconcileCommand{})
			}
			for _, projectID := range args {
				err := module.Commands().Reconcile.Execute(ctx, translation.ReconcileCommand{ProjectID: projectID})
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
}
