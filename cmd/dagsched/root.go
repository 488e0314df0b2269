package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lmeninato/dagsched/internal/config"
)

func newRootCmd() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:           "dagsched",
		Short:         "Discrete-event scheduler simulator for resource-constrained DAGs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().Bool("debug", false, "enable debug logging")
	root.PersistentFlags().String("log-format", "console", "log encoding: console or json")
	_ = v.BindPFlag("debug", root.PersistentFlags().Lookup("debug"))
	_ = v.BindPFlag("log-format", root.PersistentFlags().Lookup("log-format"))

	root.AddCommand(newRunCmd(v))
	return root
}

func bindViper(v *viper.Viper, cmd *cobra.Command, names ...string) {
	for _, name := range names {
		_ = v.BindPFlag(name, cmd.Flags().Lookup(name))
	}
}
