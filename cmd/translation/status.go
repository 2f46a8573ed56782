package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/revenuewire/translation/internal/domain"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "List translation projects and their progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			module, err := buildModule(ctx, opts)
			if err != nil {
				return err
			}
			defer module.Close()

			statuses := []domain.ProjectStatus{domain.ProjectPending, domain.ProjectInProgress}
			if all {
				statuses = append(statuses, domain.ProjectCompleted)
			}
			projects, err := module.Projects(ctx, statuses...)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no open projects")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROJECT\tPROVIDER\tLANGUAGE\tSTATUS\tSIZE\tCREATED")
			for _, project := range projects {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					project.ID,
					project.Provider,
					project.TargetLanguage,
					project.Status,
					project.Size,
					project.CreatedAt.Format("2006-01-02 15:04"),
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include completed projects")
	return cmd
}
