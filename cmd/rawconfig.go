/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	serial "github.com/allbin/go-serial-stress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rawConfigCmd represents the raw-config command
var rawConfigCmd = &cobra.Command{
	Use:   "raw-config <port>",
	Short: "Configure a serial device for raw data",
	Long: `Apply stty-style settings to a serial device.

Settings are read one per line: a mode name sets it, a leading '-' clears
it, and "name = <undef>;" disables a control character. Output of
"stty -a -F <port>", one setting per line, is accepted as is.

Without --settings the built-in raw script is applied (see "sst dump
settings"). The device is only written when the settings change it.

Example usage:
  sst raw-config /dev/ttyUSB0
  sst raw-config /dev/ttyUSB0 --settings raw.txt --raw-config-debug`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return applyRawConfig(args[0], viper.GetString("settings"), viper.GetBool("raw-config-debug"))
	},
}

func init() {
	rootCmd.AddCommand(rawConfigCmd)

	rawConfigCmd.Flags().StringP("settings", "s", "", "stty-style settings file (default: built-in raw script)")
}

// loadSettings returns the settings text in path, or the built-in script
func loadSettings(path string) (string, error) {
	if path == "" {
		return serial.DefaultRawSettings, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading settings: %w", err)
	}
	return string(data), nil
}

func applyRawConfig(device, settingsFile string, debug bool) error {
	settings, err := loadSettings(settingsFile)
	if err != nil {
		return err
	}

	log := slog.Default().With("module", "raw-config", "device", device)
	res, err := serial.ApplyRawConfig(device, settings,
		serial.WithLogger(log),
		serial.WithDebug(debug),
	)
	if err != nil {
		return err
	}

	if res.Changed {
		log.Info("raw configuration applied", "diagnostics", len(res.Diagnostics))
	} else {
		log.Info("device already configured", "diagnostics", len(res.Diagnostics))
	}
	return nil
}
