/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	serial "github.com/allbin/go-serial-stress"
	"github.com/allbin/go-serial-stress/internal/tui/components"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dumpCmd represents the dump command
var dumpCmd = &cobra.Command{
	Use:       "dump settings|pattern",
	Short:     "Write the built-in raw settings or the test pattern",
	ValidArgs: []string{"settings", "pattern"},
	Long: `Write one of the built-in artifacts to stdout or a file.

  settings  the raw configuration script applied by --do-raw-config
  pattern   the 196 byte test pattern, written once

The pattern is binary; use --hex to view it on a terminal.

Example usage:
  sst dump settings > raw.txt
  sst dump pattern --output pattern.bin
  sst dump pattern --hex`,
	Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if path := viper.GetString("output"); path != "" {
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return dump(out, args[0], viper.GetBool("hex"), out == cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	dumpCmd.Flags().BoolP("hex", "x", false, "Write the pattern as a hex dump")
}

func dump(w io.Writer, what string, hex, styled bool) error {
	switch what {
	case "settings":
		_, err := io.WriteString(w, serial.DefaultRawSettings)
		return err
	case "pattern":
		if !hex {
			return serial.DumpPattern(w)
		}
		lines := components.NewDataFormatter(styled).FormatDump(serial.Pattern())
		_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
		return err
	default:
		return fmt.Errorf("unknown dump %q: %w", what, serial.ErrInvalidArgument)
	}
}
