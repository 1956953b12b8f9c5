package main

import (
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"defi-nlu/internal/nlu/model"
	"defi-nlu/internal/nlu/service"
	"defi-nlu/internal/nlu/snapshot"
)

func newTrainCmd(s *settings) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train on the generated corpus and optionally write a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := s.nlu()
			if err != nil {
				return err
			}
			log := s.logger()

			examples := generator(n).Generate()
			start := time.Now()
			m, err := model.Train(examples, service.OptionsFromConfig(n).Classifier)
			if err != nil {
				return fmt.Errorf("train: %w", err)
			}
			elapsed := time.Since(start)
			log.Info("Model trained", map[string]interface{}{
				"modelId":    m.ID,
				"examples":   len(examples),
				"durationMs": elapsed.Milliseconds(),
			})

			if out != "" {
				data, err := snapshot.Encode(m)
				if err != nil {
					return fmt.Errorf("encode snapshot: %w", err)
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("write snapshot: %w", err)
				}
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Field", "Value"})
			table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetBorder(false)
			table.Append([]string{"Model ID", m.ID})
			table.Append([]string{"Examples", fmt.Sprint(len(examples))})
			table.Append([]string{"Vocabulary", fmt.Sprint(m.VocabularySize())})
			table.Append([]string{"Classes", fmt.Sprint(len(m.Classes()))})
			table.Append([]string{"Epochs", fmt.Sprint(n.Epochs)})
			table.Append([]string{"Duration", elapsed.Round(time.Millisecond).String()})
			if out != "" {
				table.Append([]string{"Snapshot", out})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the trained model snapshot to this file")
	return cmd
}
