/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	serial "github.com/allbin/go-serial-stress"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// speedCmd represents the speed command
var speedCmd = &cobra.Command{
	Use:   "speed <port> <rate>",
	Short: "Set the baud rate of a serial device",
	Long: `Set the baud rate of a serial device from a rate token.

Standard rates are written through the termios rate bits; rates above
4M (8M, 12M, 12.5M) are programmed as explicit speeds through termios2.
Setting a speed discards any unread input.

Example usage:
  sst speed /dev/ttyUSB0 115200
  sst speed /dev/ttyTHS0 12.5M
  sst speed --list`,
	Args: func(cmd *cobra.Command, args []string) error {
		if list, _ := cmd.Flags().GetBool("list"); list {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if list, _ := cmd.Flags().GetBool("list"); list {
			fmt.Fprintln(cmd.OutOrStdout(), speedList())
			return nil
		}

		device, token := args[0], args[1]
		err := serial.ApplySpeed(device, token,
			serial.WithLogger(slog.Default().With("module", "speed")),
			serial.WithDebug(viper.GetBool("debug")),
		)
		if err != nil {
			return err
		}
		slog.Info("speed set", "device", device, "speed", token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(speedCmd)

	speedCmd.Flags().BoolP("list", "l", false, "List the accepted rate tokens")
}

func speedList() string {
	extStyle := lipgloss.NewStyle().Faint(true)

	var b strings.Builder
	for _, s := range serial.Speeds() {
		line := fmt.Sprintf("%-10s %d", s.Token, s.Value)
		if s.Extended() {
			line += extStyle.Render("  (termios2)")
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
