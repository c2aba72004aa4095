/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	serial "github.com/allbin/go-serial-stress"
	"github.com/allbin/go-serial-stress/internal/tui/styles"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Describe a device before testing it",
	Long: `Show what sst will find at a device path: whether it exists, whether it
is a character device, and whether it answers terminal attribute requests.

Example usage:
  sst info /dev/ttyUSB0
  sst info capture.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := serial.DescribeDevice(args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Device Information: %s\n\n", styles.ValueStyle.Render(info.Path))
		fmt.Fprintf(out, "  Name:        %s\n", info.Name)
		fmt.Fprintf(out, "  Description: %s\n", info.Description)
		fmt.Fprintf(out, "  Exists:      %s\n", yesNo(info.Exists))
		fmt.Fprintf(out, "  Char device: %s\n", yesNo(info.IsCharDevice))
		fmt.Fprintf(out, "  Terminal:    %s\n", yesNo(info.IsTerminal))

		if !info.Exists {
			fmt.Fprintln(out, styles.StatusWarningStyle.Render("\nrun --create writes to it as a plain file"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func yesNo(b bool) string {
	if b {
		return styles.StatusOKStyle.Render("yes")
	}
	return styles.StatusFailedStyle.Render("no")
}
