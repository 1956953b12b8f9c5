package main

import (
	"fmt"
	"math/rand"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"defi-nlu/internal/nlu/evaluation"
	"defi-nlu/internal/nlu/model"
	"defi-nlu/internal/nlu/service"
)

func newEvalCmd(s *settings) *cobra.Command {
	var (
		confusion bool
		perClass  bool
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Compare the trained model with the keyword baseline on a held-out split",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := s.nlu()
			if err != nil {
				return err
			}

			examples := generator(n).Generate()
			train, test := evaluation.TrainTestSplit(examples, n.TestFraction, rand.New(rand.NewSource(n.Seed)))
			if len(test) == 0 {
				return fmt.Errorf("test split is empty; raise --test-fraction")
			}

			m, err := model.Train(train, service.OptionsFromConfig(n).Classifier)
			if err != nil {
				return fmt.Errorf("train: %w", err)
			}
			baseline, err := evaluation.NewKeywordBaseline(evaluation.DefaultKeywordRules())
			if err != nil {
				return err
			}
			cmp, err := evaluation.Compare(m, baseline, test)
			if err != nil {
				return fmt.Errorf("evaluate: %w", err)
			}

			s.logger().Info("Evaluation finished", map[string]interface{}{
				"train":         len(train),
				"test":          len(test),
				"modelAccuracy": cmp.Model.Accuracy,
				"baseline":      cmp.Baseline.Accuracy,
			})

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "train=%d test=%d\n\n", len(train), len(test))

			summary := tablewriter.NewWriter(w)
			summary.SetHeader([]string{"Predictor", "Accuracy", "Macro P", "Macro R", "Macro F1"})
			summary.SetBorder(false)
			for _, row := range []struct {
				name string
				r    *evaluation.Report
			}{{"model", cmp.Model}, {"keyword baseline", cmp.Baseline}} {
				summary.Append([]string{
					row.name,
					pct(row.r.Accuracy),
					pct(row.r.Macro.Precision),
					pct(row.r.Macro.Recall),
					pct(row.r.Macro.F1),
				})
			}
			summary.Render()
			fmt.Fprintf(w, "\naccuracy gain: %+.1f points\n", cmp.AccuracyGain()*100)

			if perClass {
				fmt.Fprintln(w)
				classes := tablewriter.NewWriter(w)
				classes.SetHeader([]string{"Intent", "Precision", "Recall", "F1", "Support"})
				classes.SetBorder(false)
				classes.SetAlignment(tablewriter.ALIGN_LEFT)
				for _, c := range cmp.Model.PerClass {
					classes.Append([]string{c.Intent.String(), pct(c.Precision), pct(c.Recall), pct(c.F1), fmt.Sprint(c.Support)})
				}
				classes.Render()
			}

			if confusion {
				fmt.Fprintln(w)
				renderConfusion(cmd, cmp.Model.Confusion)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&perClass, "per-class", true, "print per-intent precision, recall and F1 for the model")
	cmd.Flags().BoolVar(&confusion, "confusion", false, "print the model's confusion matrix (rows are actual intents)")
	return cmd
}

func renderConfusion(cmd *cobra.Command, cm evaluation.ConfusionMatrix) {
	classes := cm.Classes()
	header := make([]string, 0, len(classes)+1)
	header = append(header, "actual \\ predicted")
	for _, c := range classes {
		header = append(header, c.String())
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetAutoFormatHeaders(false)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, actual := range classes {
		row := make([]string, 0, len(classes)+1)
		row = append(row, actual.String())
		for _, predicted := range classes {
			row = append(row, fmt.Sprint(cm.Count(actual, predicted)))
		}
		table.Append(row)
	}
	table.Render()
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
