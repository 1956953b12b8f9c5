package main

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"defi-nlu/pkg/registry"
)

func newActivitiesCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "activities",
		Short: "Validate the activity registry and list the documented Zeebe job types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.LoadRegistry(path)
			if err != nil {
				return fmt.Errorf("load registry %s: %w", path, err)
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Task Type", "Version", "Status", "Timeout", "Retries", "Error Codes"})
			table.SetAutoWrapText(false)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetBorder(false)
			for _, a := range reg.Activities {
				table.Append([]string{
					a.TaskType,
					a.Version,
					a.ImplementationStatus,
					a.Timeout,
					fmt.Sprint(a.Retries),
					strings.Join(a.ErrorCodes, ", "),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "registry", "configs/activity-registry.json", "path to the activity registry")
	return cmd
}
