// Package cli implements the paramctl command tree.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

// ErrInvalid is returned when at least one validated file has failures.
var ErrInvalid = errors.New("validation failed")

// NewRootCmd builds the paramctl command tree. Every call gets its own viper
// instance so commands can be constructed repeatedly in tests.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "paramctl",
		Short:         "Validate and format middleware resource parameters",
		Long:          `Validate parameter values against service schemas, format them for submission, and fill them in interactively.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	cmd.PersistentFlags().String("catalog", "", "directory of service schema documents (default: bundled schemas)")
	cmd.PersistentFlags().String("locale", "en", "locale of validation messages")

	klogFlags := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(klogFlags)
	cmd.PersistentFlags().AddGoFlagSet(klogFlags)

	_ = v.BindPFlags(cmd.PersistentFlags())
	v.SetEnvPrefix("PARAMCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd.AddCommand(
		newValidateCmd(v),
		newFormatCmd(v),
		newFillCmd(v),
		newImportCmd(v),
		newCatalogCmd(v),
	)
	return cmd
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	defer klog.Flush()

	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, ErrInvalid) {
			fmt.Fprintln(stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", cfgFile, err)
	}
	klog.V(1).InfoS("using config file", "path", v.ConfigFileUsed())
	return nil
}

// bindFlags binds the running command's local flags. Subcommands share flag
// names, so binding happens only for the command that actually runs.
func bindFlags(v *viper.Viper) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return v.BindPFlags(cmd.Flags())
	}
}
