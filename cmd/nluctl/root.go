package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"defi-nlu/internal/common/config"
	"defi-nlu/internal/common/logger"
	"defi-nlu/internal/nlu/corpus"
)

// settings carries the flag values shared by every subcommand. Flags are
// bound into a private viper so NLUCTL_* env vars work too.
type settings struct {
	v *viper.Viper
}

func newRootCmd() *cobra.Command {
	s := &settings{v: viper.New()}
	s.v.SetEnvPrefix("NLUCTL")
	s.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	s.v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "nluctl",
		Short: "Train, evaluate and query the DeFi command classifier offline",
		Long: `nluctl runs the same training pipeline as the worker manager without
Zeebe, Redis or Postgres. Use it to inspect the generated corpus, measure
held-out accuracy against the keyword baseline, and export model snapshots.`,
		SilenceUsage: true,
	}

	d := config.DefaultNLU()
	flags := root.PersistentFlags()
	flags.Int("epochs", d.Epochs, "training epochs per class")
	flags.Float64("learning-rate", d.LearningRate, "SGD learning rate")
	flags.Float64("early-stop", d.EarlyStopTolerance, "stop a class once its epoch loss changes less than this (0 disables)")
	flags.Float64("typo-rate", d.TypoRate, "fraction of base examples that also get a typo variant")
	flags.Int64("seed", d.Seed, "seed for typo injection and the train/test split")
	flags.Float64("test-fraction", d.TestFraction, "share of the corpus held out by eval")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")

	for key, name := range map[string]string{
		"nlu.epochs":               "epochs",
		"nlu.learning_rate":        "learning-rate",
		"nlu.early_stop_tolerance": "early-stop",
		"nlu.typo_rate":            "typo-rate",
		"nlu.seed":                 "seed",
		"nlu.test_fraction":        "test-fraction",
		"log_level":                "log-level",
	} {
		_ = s.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		newTrainCmd(s),
		newEvalCmd(s),
		newClassifyCmd(s),
		newCorpusCmd(s),
		newActivitiesCmd(),
	)
	return root
}

// nlu returns the validated NLU settings after flags and env are applied.
func (s *settings) nlu() (config.NLUConfig, error) {
	n := config.DefaultNLU()
	n.Epochs = s.v.GetInt("nlu.epochs")
	n.LearningRate = s.v.GetFloat64("nlu.learning_rate")
	n.EarlyStopTolerance = s.v.GetFloat64("nlu.early_stop_tolerance")
	n.TypoRate = s.v.GetFloat64("nlu.typo_rate")
	n.Seed = s.v.GetInt64("nlu.seed")
	n.TestFraction = s.v.GetFloat64("nlu.test_fraction")
	if err := config.ValidateNLU(n); err != nil {
		return n, fmt.Errorf("invalid flags: %w", err)
	}
	return n, nil
}

func (s *settings) logger() logger.Logger {
	return logger.NewStructured(s.v.GetString("log_level"), "console")
}

func generator(n config.NLUConfig) *corpus.Generator {
	return corpus.NewGenerator(corpus.Options{TypoRate: n.TypoRate, Seed: n.Seed})
}
