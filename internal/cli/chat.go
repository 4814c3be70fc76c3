// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/zen-tui/internal/artifact"
	"github.com/jeranaias/zen-tui/internal/config"
	"github.com/jeranaias/zen-tui/internal/events"
	"github.com/jeranaias/zen-tui/internal/host"
	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/preview"
	"github.com/jeranaias/zen-tui/internal/session"
	"github.com/jeranaias/zen-tui/internal/storage"
	"github.com/jeranaias/zen-tui/internal/ui/chat"
	"github.com/jeranaias/zen-tui/internal/ui/components"
	"github.com/jeranaias/zen-tui/internal/ui/styles"
)

// chatOptions are the flags of the chat UI.
type chatOptions struct {
	resume    bool
	chatID    string
	noPreview bool
	exportDir string
}

func (o *chatOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVarP(&o.resume, "resume", "r", false, "resume the most recent chat")
	f.StringVar(&o.chatID, "chat", "", "open a saved chat by id or id prefix")
	f.BoolVar(&o.noPreview, "no-preview", false, "do not start the live preview server")
	f.StringVar(&o.exportDir, "export-dir", "", "directory for exported transcripts (default: current)")
}

func newChatCommand(gf *globalFlags) *cobra.Command {
	opts := &chatOptions{}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start the chat UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, gf, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

// =============================================================================
// CHAT UI
// =============================================================================

func runChat(cmd *cobra.Command, gf *globalFlags, opts *chatOptions) error {
	if err := RequiresTTY("start the chat UI"); err != nil {
		return errors.Wrap(err, "use `zen repl` for line mode")
	}

	cfg, cfgPath, err := loadConfig(gf)
	if err != nil {
		return err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	closer := setupFileLogging(cfg)
	defer closer.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	kv, err := openKV(cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	bus := events.NewBus()
	defer bus.Close()
	historyEvents, err := bus.SubscribeHistory(ctx)
	if err != nil {
		return err
	}

	var previewServer *preview.Server
	if cfg.Dock.PreviewAddr != "" && !opts.noPreview {
		previewServer = preview.New(cfg.Dock.PreviewAddr)
		if err := previewServer.Start(ctx); err != nil {
			log.Warn().Err(err).Msg("live preview disabled")
			previewServer = nil
		}
	}

	location := host.NewLocation(kv)
	toasts := components.NewToastManager()
	theme := styles.NewTheme(cfg.UI.Theme)

	mgrOpts := session.Options{
		Identity:  host.EnvIdentity{},
		Catalog:   session.StaticCatalog(loadCatalog()),
		KV:        kv,
		Navigator: location,
		History:   bus,
		Archive:   store,
		Notifier:  toasts,
		Clipboard: host.Clipboard{},
		Sharer:    host.Sharer{},
	}
	if conv := initialConversation(store, location, opts); conv != nil {
		mgrOpts.ChatID = conv.ID
		mgrOpts.Conversation = model.NewConversationFrom(conv.ID, conv.Messages)
	}
	mgr := session.NewManager(mgrOpts)

	dock := artifact.NewDock(
		artifact.WithPolicy(cfg.DockPolicy()),
		artifact.WithClassifier(artifact.NewClassifier(cfg.Dock.MemoSize)),
	)

	chatOpts := chat.Options{
		Manager:       mgr,
		Dock:          dock,
		Theme:         theme,
		Toasts:        toasts,
		Channel:       newChannel(cfg),
		Timeout:       cfg.Timeout(),
		OpenBrowser:   cfg.Dock.OpenBrowser,
		History:       store,
		HistoryEvents: historyEvents,
		Open:          host.Open,
		ExportDir:     opts.exportDir,
		ShowMetrics:   cfg.UI.ShowMetrics,
	}
	if previewServer != nil {
		chatOpts.Preview = previewServer
	}
	m := chat.New(chatOpts)

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, programOpts...)
	m.SetProgram(p)

	go func() {
		err := config.Watch(ctx, cfgPath, func(next *config.Config) {
			p.Send(chat.ConfigReloadedMsg{Config: next})
		})
		if err != nil {
			log.Warn().Err(err).Msg("config watch stopped")
		}
	}()

	log.Info().Str("chat_id", mgr.ChatID()).Str("backend", cfg.Backend.Kind).Msg("chat UI starting")
	_, err = p.Run()
	if previewServer != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
		defer stop()
		_ = previewServer.Shutdown(shutdownCtx)
	}
	if err != nil {
		return errors.Wrap(err, "chat UI")
	}
	return nil
}

// initialConversation returns the saved chat to open, if any: --chat wins
// over --resume.
func initialConversation(store *storage.ConversationStore, location *host.Location, opts *chatOptions) *storage.StoredConversation {
	id := opts.chatID
	if id == "" && opts.resume {
		last, ok := location.LastChatID()
		if !ok {
			log.Info().Msg("no recent chat to resume")
			return nil
		}
		id = last
	}
	if id == "" {
		return nil
	}
	conv, err := store.Resolve(id)
	if err != nil {
		log.Warn().Err(err).Str("chat_id", id).Msg("could not open saved chat")
		return nil
	}
	return conv
}
