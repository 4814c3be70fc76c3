// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/zen-tui/internal/backend"
)

// Version information, set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
}

// NewRootCommand builds the zen command tree. Running zen with no command
// starts the chat UI.
func NewRootCommand() *cobra.Command {
	gf := &globalFlags{}
	chatOpts := &chatOptions{}

	root := &cobra.Command{
		Use:   "zen",
		Short: "Chat with AI models and preview what they build",
		Long: `zen is a terminal chat client. Answers that contain a web page, a
component or a chart open in a side dock with a live browser preview.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			backend.UserAgent = "zen/" + Version
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, gf, chatOpts)
		},
	}
	root.SetVersionTemplate("zen {{.Version}}\n")
	root.Version = Version

	pf := root.PersistentFlags()
	pf.StringVar(&gf.configPath, "config", "", "config file (default ~/.zen/config.toml)")
	pf.StringVar(&gf.logLevel, "log-level", "", "log level: debug, info, warn, error")
	chatOpts.bind(root)

	root.AddCommand(
		newChatCommand(gf),
		newReplCommand(gf),
		newClassifyCommand(),
		newRenderCommand(gf),
		newHistoryCommand(gf),
		newExportCommand(gf),
		newTokensCommand(),
		newConfigCommand(gf),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	return ExecuteArgs(os.Args[1:], os.Stdout, os.Stderr)
}

// ExecuteArgs runs zen with args, writing to stdout and stderr.
func ExecuteArgs(args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, ErrorStyle.Render("Error:"), err)
		return 1
	}
	return 0
}
