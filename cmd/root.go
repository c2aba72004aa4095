/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/allbin/go-serial-stress/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sst",
	Short: "Serial line raw configuration and stress test",
	Long: `Configure Linux serial lines for raw data and stress test them.

sst writes a fixed 196 byte pattern to a serial device in bursts of
growing length while a detached reader drains the other end and counts
what arrives. Both ends are set up for raw transmission first, so
every byte value except the control bytes of the pattern is passed
through untouched.

Example usage:
  sst run --tty /dev/ttyUSB0 --do-raw-config --fork-reader --send-count 921600
  sst raw-config /dev/ttyUSB0
  sst speed /dev/ttyUSB0 1M
  sst dump pattern --hex`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load()
		if err := initConfig(cmd); err != nil {
			return err
		}

		format := logging.Format(viper.GetString("log-format"))
		if format != logging.FormatColor && format != logging.FormatText {
			return fmt.Errorf("unknown log format %q", format)
		}
		verbose := viper.GetBool("debug") || viper.GetBool("raw-config-debug")
		logging.Setup(os.Stderr, format, verbose)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(exitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sst.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "Log every step of a session")
	rootCmd.PersistentFlags().Bool("raw-config-debug", false, "Log every applied setting during raw configuration")
	rootCmd.PersistentFlags().String("log-format", string(logging.FormatColor), "Log format: color, text")
}

// initConfig reads in config file and ENV variables if set, and binds
// every flag of the running command so config and environment can supply it
func initConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sst")
	}

	viper.SetEnvPrefix("SST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	return viper.BindPFlags(cmd.InheritedFlags())
}
