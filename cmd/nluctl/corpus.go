package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"defi-nlu/internal/nlu/corpus"
	"defi-nlu/internal/nlu/intent"
)

func newCorpusCmd(s *settings) *cobra.Command {
	var (
		base   bool
		filter string
	)

	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Print the training corpus as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := s.nlu()
			if err != nil {
				return err
			}

			var examples []corpus.Example
			if base {
				examples = generator(n).Base()
			} else {
				examples = generator(n).Generate()
			}

			var only *intent.Intent
			if filter != "" {
				in, err := intent.Parse(filter)
				if err != nil {
					return err
				}
				only = &in
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, ex := range examples {
				if only != nil && ex.Intent != *only {
					continue
				}
				if err := enc.Encode(ex); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&base, "base", false, "omit typo variants")
	cmd.Flags().StringVar(&filter, "intent", "", "only print examples of this intent, e.g. STAKE_NATIVE")
	return cmd
}
