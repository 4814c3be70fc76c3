// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, TitleStyle.Render("zen "+Version))
			fmt.Fprintln(out, field("Commit:", GitCommit))
			fmt.Fprintln(out, field("Built:", BuildDate))
			fmt.Fprintln(out, field("Go:", runtime.Version()))
			fmt.Fprintln(out, field("Platform:", runtime.GOOS+"/"+runtime.GOARCH))
		},
	}
}
