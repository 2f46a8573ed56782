package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the translation store tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			module, err := buildModule(ctx, opts)
			if err != nil {
				return err
			}
			defer module.Close()

			if err := module.InitSchema(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "translation store initialized")
			return nil
		},
	}
}
