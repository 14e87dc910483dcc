// Command typeforge is a small driver around the abstract matcher: it
// wires up the external services the matcher needs from in-memory fakes
// and runs illustrative matches against the builtin prelude classes. It
// is not an analyzer front-end — there is no source parser anywhere in
// this module (out of scope per the matcher's own design).
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/typeforge-lang/typeforge/internal/config"
	"github.com/typeforge-lang/typeforge/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "typeforge",
		Short: "Drive the abstract type matcher against builtin fixtures",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return errors.Wrap(err, "binding flags")
			}
			loaded, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to typeforge.yaml (default: ./typeforge.yaml)")
	root.PersistentFlags().Bool("verbose", false, "enable verbose matcher diagnostics")
	root.AddCommand(newMatchCmd())
	root.AddCommand(newVersionCmd())
	root.AddCommand(newConfigCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (*zap.SugaredLogger, error) {
	return logging.New(cfg.Verbose)
}
