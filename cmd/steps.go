// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/digitalhand/ros2-setup/internal/provision"
)

func init() {
	rootCmd.AddCommand(stepsCmd)
}

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the installation steps",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		steps := provision.Steps()

		printHeader(out, "Installation Steps")
		for i, s := range steps {
			printStatus(out, markInfo(), fmt.Sprintf("[%d/%d] %s", i+1, len(steps), s.Name), dimText(s.Description))
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Preview the exact commands with: ros2-setup --dry-run")
	},
}
