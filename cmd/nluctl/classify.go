package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"defi-nlu/internal/nlu/service"
	"defi-nlu/internal/nlu/store"
)

func newClassifyCmd(s *settings) *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "classify <text>...",
		Short: "Classify each argument and print one JSON result per line",
		Long: `classify runs every argument through the full NLU pipeline.

With --model the snapshot at that path is used; when the file does not exist
yet the model is trained and written there for the next run.`,
		Example: `  nluctl classify "stake 5 sol to msol" "what's my balance"
  nluctl classify --model ./model.json "send 2 sol to 9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := s.nlu()
			if err != nil {
				return err
			}

			opts := service.OptionsFromConfig(n)
			var options []service.Option
			if modelPath != "" {
				opts.LoadSnapshot = true
				options = append(options, service.WithStore(store.NewFileSnapshotStore(modelPath)))
			}
			svc := service.New(generator(n), s.logger(), opts, options...)

			results, err := svc.ProcessBatch(cmd.Context(), args)
			if err != nil {
				return fmt.Errorf("classify: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range results {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "snapshot file to load, created when missing")
	return cmd
}
