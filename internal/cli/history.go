// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/storage"
	"github.com/jeranaias/zen-tui/internal/ui/components"
	"github.com/jeranaias/zen-tui/internal/ui/styles"
)

func newHistoryCommand(gf *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"sessions"},
		Short:   "List, show and delete saved chats",
	}
	cmd.AddCommand(
		newHistoryListCommand(gf),
		newHistoryShowCommand(gf),
		newHistoryDeleteCommand(gf),
		newHistoryClearCommand(gf),
	)
	return cmd
}

// historyStore loads config and opens the conversation store.
func historyStore(cmd *cobra.Command, gf *globalFlags) (*storage.ConversationStore, error) {
	cfg, _, err := loadConfig(gf)
	if err != nil {
		return nil, err
	}
	setupConsoleLogging(cfg, gf, cmd.ErrOrStderr())
	return openStore(cfg)
}

func newHistoryListCommand(gf *globalFlags) *cobra.Command {
	var (
		query  string
		deep   bool
		asJSON bool
		limit  int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved chats, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd, gf)
			if err != nil {
				return err
			}
			var metas []storage.ConversationMeta
			switch {
			case query != "" && deep:
				metas, err = store.SearchMessages(query)
			case query != "":
				metas, err = store.Search(query)
			default:
				metas, err = store.List()
			}
			if err != nil {
				return err
			}
			if limit > 0 && len(metas) > limit {
				metas = metas[:limit]
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, metas)
			}
			fmt.Fprint(out, storage.FormatSessionList(metas))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&query, "search", "s", "", "only chats whose summary matches")
	f.BoolVar(&deep, "deep", false, "search message text instead of summaries")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	f.IntVarP(&limit, "limit", "n", 0, "show at most n chats")
	return cmd
}

func newHistoryShowCommand(gf *globalFlags) *cobra.Command {
	var (
		raw    bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved chat",
		Long:  "Prints a saved chat. The id may be shortened to any unique prefix.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd, gf)
			if err != nil {
				return err
			}
			conv, err := store.Resolve(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, conv)
			}
			printConversation(out, conv, raw || !IsStdoutTTY())
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// printConversation writes conv as "## Role" sections, rendered with glamour
// unless raw.
func printConversation(out io.Writer, conv *storage.StoredConversation, raw bool) {
	fmt.Fprintln(out, TitleStyle.Render(conv.Summary))
	fmt.Fprintln(out, field("ID:", conv.ID))
	if conv.Model != "" {
		fmt.Fprintln(out, field("Model:", conv.Model))
	}
	fmt.Fprintln(out, field("Updated:", humanize.Time(conv.UpdatedAt)))
	fmt.Fprintln(out)

	var md *components.MarkdownRenderer
	if !raw {
		md = components.NewMarkdownRenderer(styles.NewTheme("auto").GlamourStyle())
	}
	width := GetTerminalWidth()
	for _, msg := range conv.Messages {
		text := msg.Text()
		if msg.Role == model.RoleUser {
			text = components.UserPromptText(text)
		}
		section := "## " + msg.Role.DisplayName() + "\n\n" + text + "\n"
		if md != nil {
			section = md.Render(section, width)
		}
		fmt.Fprintln(out, section)
	}
}

func newHistoryDeleteCommand(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete saved chats",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := historyStore(cmd, gf)
			if err != nil {
				return err
			}
			for _, id := range args {
				conv, err := store.Resolve(id)
				if err != nil {
					return err
				}
				if err := store.Delete(conv.ID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("[OK]"), "Deleted", conv.ID)
			}
			return nil
		},
	}
}

func newHistoryClearCommand(gf *globalFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to delete all chats without --yes")
			}
			store, err := historyStore(cmd, gf)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("[OK]"), "History cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm")
	return cmd
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
