// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/zen-tui/internal/artifact"
	"github.com/jeranaias/zen-tui/internal/config"
	"github.com/jeranaias/zen-tui/internal/host"
	"github.com/jeranaias/zen-tui/internal/intent"
	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/session"
	"github.com/jeranaias/zen-tui/internal/storage"
	"github.com/jeranaias/zen-tui/internal/ui/chat"
	"github.com/jeranaias/zen-tui/internal/util"
)

const replHistoryFile = "repl_history"

func newReplCommand(gf *globalFlags) *cobra.Command {
	var chatID string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Chat in line mode",
		Long: `Chat without the full-screen UI. Arrow keys browse earlier input,
Ctrl+C stops an answer, Ctrl+D exits. Type /help for commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(cmd, gf, chatID)
		},
	}
	cmd.Flags().StringVar(&chatID, "chat", "", "continue a saved chat by id or id prefix")
	return cmd
}

func runRepl(cmd *cobra.Command, gf *globalFlags, chatID string) error {
	cfg, _, err := loadConfig(gf)
	if err != nil {
		return err
	}
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	closer := setupFileLogging(cfg)
	defer closer.Close()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	kv, err := openKV(cfg)
	if err != nil {
		return err
	}
	defer kv.Close()

	out := cmd.OutOrStdout()
	mgrOpts := session.Options{
		Identity:  host.EnvIdentity{},
		Catalog:   session.StaticCatalog(loadCatalog()),
		KV:        kv,
		Navigator: host.NewLocation(kv),
		Archive:   store,
		Notifier:  printNotifier(out),
		Clipboard: host.Clipboard{},
		Sharer:    host.Sharer{},
	}
	if chatID != "" {
		conv, err := store.Resolve(chatID)
		if err != nil {
			return err
		}
		mgrOpts.ChatID = conv.ID
		mgrOpts.Conversation = model.NewConversationFrom(conv.ID, conv.Messages)
	}

	r := newReplSession(replOptions{
		Manager: session.NewManager(mgrOpts),
		Dock: artifact.NewDock(
			artifact.WithPolicy(cfg.DockPolicy()),
			artifact.WithClassifier(artifact.NewClassifier(cfg.Dock.MemoSize)),
		),
		Channel: newChannel(cfg),
		Timeout: cfg.Timeout(),
		History: store,
		Out:     out,
	})
	return r.loop()
}

// printNotifier prints notices as bracketed status lines.
func printNotifier(out io.Writer) session.Notifier {
	return session.NotifierFunc(func(n session.Notice) {
		switch n.Level {
		case session.LevelError:
			fmt.Fprintln(out, ErrorStyle.Render("[Error]"), n.Text)
		case session.LevelWarning:
			fmt.Fprintln(out, WarningStyle.Render("[Warning]"), n.Text)
		case session.LevelSuccess:
			fmt.Fprintln(out, SuccessStyle.Render("[OK]"), n.Text)
		default:
			fmt.Fprintln(out, DimStyle.Render("[Info]"), n.Text)
		}
	})
}

// =============================================================================
// LINE INPUT
// =============================================================================

// lineInput provides input history and line editing.
type lineInput struct {
	line        *liner.State
	historyFile string
}

func newLineInput() *lineInput {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	in := &lineInput{line: line, historyFile: filepath.Join(dir, replHistoryFile)}
	if f, err := os.Open(in.historyFile); err == nil {
		_, _ = in.line.ReadHistory(f)
		f.Close()
	}
	return in
}

func (in *lineInput) prompt(p string) (string, error) {
	text, err := in.line.Prompt(p)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) != "" {
		in.line.AppendHistory(text)
	}
	return text, nil
}

// close saves history with owner-only permissions and restores the terminal.
func (in *lineInput) close() {
	if f, err := os.OpenFile(in.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
		_, _ = in.line.WriteHistory(f)
		f.Close()
	}
	in.line.Close()
}

// =============================================================================
// REPL SESSION
// =============================================================================

type replOptions struct {
	Manager *session.Manager
	Dock    *artifact.Dock
	Channel session.Channel
	Timeout time.Duration
	History chat.HistoryStore
	Out     io.Writer
	// ExportDir receives /export transcripts. Empty means the working
	// directory.
	ExportDir string
	// Open hands a file URL to the browser for /preview.
	Open func(target string) error
}

// replSession drives one line-mode chat. Stream output is delivered through
// msgs by the same runner the full-screen UI uses.
type replSession struct {
	opts   replOptions
	mgr    *session.Manager
	dock   *artifact.Dock
	runner *chat.StreamRunner
	msgs   chan tea.Msg
	out    io.Writer

	// interrupts stops the current answer; nil disables it (tests).
	interrupts <-chan os.Signal
}

func newReplSession(opts replOptions) *replSession {
	if opts.Open == nil {
		opts.Open = host.Open
	}
	r := &replSession{
		opts:   opts,
		mgr:    opts.Manager,
		dock:   opts.Dock,
		runner: chat.NewStreamRunner(opts.Channel, opts.Timeout),
		msgs:   make(chan tea.Msg, 256),
		out:    opts.Out,
	}
	r.runner.SetSender(r)
	return r
}

// Send implements chat.Sender.
func (r *replSession) Send(msg tea.Msg) {
	r.msgs <- msg
}

func (r *replSession) loop() error {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	r.interrupts = sig

	in := newLineInput()
	defer in.close()

	r.printWelcome()
	for {
		text, err := in.prompt("zen> ")
		if err != nil {
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				log.Warn().Err(err).Msg("read input")
			}
			fmt.Fprintln(r.out)
			return nil
		}
		if !r.handleLine(text) {
			return nil
		}
	}
}

// handleLine runs one line of input. It returns false when the user quits.
func (r *replSession) handleLine(text string) bool {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return true
	case strings.EqualFold(text, "exit"), strings.EqualFold(text, "quit"):
		return false
	case strings.HasPrefix(text, "/"):
		cont, err := r.handleSlash(text)
		if err != nil {
			fmt.Fprintln(r.out, ErrorStyle.Render("[Error]"), err)
		}
		return cont
	}
	r.stream(r.mgr.Submit(text), intent.IsBuildIntent(text))
	return true
}

// stream runs req to completion, printing the reply as it arrives.
func (r *replSession) stream(req *session.Request, buildHint bool) {
	if req == nil {
		return
	}
	before := len(r.mgr.Messages())
	printed := 0

	r.runner.Start(req)
	fmt.Fprintln(r.out)
	for {
		select {
		case <-r.interrupts:
			r.runner.Stop()
			fmt.Fprintln(r.out, "\n"+WarningStyle.Render("[Stopped]"))
		case msg := <-r.msgs:
			switch msg := msg.(type) {
			case chat.StreamIncrementMsg:
				if !r.mgr.ApplyIncrement(msg.Epoch, msg.Increment) {
					continue
				}
				msgs := r.mgr.Messages()
				if len(msgs) <= before {
					continue
				}
				last := msgs[len(msgs)-1]
				if last.Role != model.RoleAssistant {
					continue
				}
				if text := last.Text(); len(text) > printed {
					fmt.Fprint(r.out, text[printed:])
					printed = len(text)
				}
			case chat.StreamDoneMsg:
				if msg.Epoch != req.Epoch {
					continue
				}
				fmt.Fprintln(r.out)
				if r.mgr.Complete(msg.Epoch, msg.Err) && msg.Err == nil {
					r.afterAnswer(buildHint)
				}
				return
			}
		}
	}
}

// afterAnswer reports an artifact and the follow-up suggestions.
func (r *replSession) afterAnswer(buildHint bool) {
	prev := r.dock.Revision()
	r.dock.Observe(r.mgr.LastAssistantText(), buildHint)
	if r.dock.IsOpen() && r.dock.Revision() != prev {
		res := r.dock.Result()
		fmt.Fprintf(r.out, "\n%s %s (%s) · /preview to open it\n",
			SuccessStyle.Render("[Artifact]"), r.dock.Title(), res.Kind)
	}
	if stats := r.mgr.Stats(); stats != nil {
		fmt.Fprintln(r.out, DimStyle.Render(stats.Format()))
	}

	chips := r.mgr.Suggestions().All()
	if len(chips) == 0 {
		return
	}
	fmt.Fprintln(r.out, DimStyle.Render("Follow up with /ask N:"))
	for i, chip := range chips {
		fmt.Fprintf(r.out, "  %s %s\n", DimStyle.Render(strconv.Itoa(i+1)+"."), chip)
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlash runs a slash command. It returns false to quit.
func (r *replSession) handleSlash(line string) (bool, error) {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		r.printHelp()

	case "/quit", "/q", "/exit":
		return false, nil

	case "/new", "/clear":
		r.mgr.NewChat()
		r.dock.Reset()
		fmt.Fprintln(r.out, SuccessStyle.Render("[OK]"), "New chat")

	case "/model", "/m":
		if len(args) == 0 {
			fmt.Fprintln(r.out, field("Model:", r.mgr.CurrentModelID()))
			for _, mi := range r.mgr.Models() {
				fmt.Fprintf(r.out, "  %s %s\n", mi.ID, DimStyle.Render(mi.Label))
			}
			return true, nil
		}
		sel := r.mgr.SwitchModel(args[0])
		fmt.Fprintln(r.out, SuccessStyle.Render("[OK]"), "Model:", sel.ID)

	case "/rerun":
		if len(args) == 0 {
			return true, errors.New("usage: /rerun <model-id>")
		}
		req, err := r.mgr.RerunWithModel(args[0])
		if err != nil {
			return true, err
		}
		r.stream(req, intent.IsBuildIntent(req.LastUserText()))

	case "/reload":
		msgs := r.mgr.Messages()
		if len(msgs) == 0 {
			return true, errors.New("nothing to reload")
		}
		req, err := r.mgr.RewindAndReload(msgs[len(msgs)-1].ID)
		if err != nil {
			return true, err
		}
		r.stream(req, intent.IsBuildIntent(req.LastUserText()))

	case "/ask":
		chips := r.mgr.Suggestions().All()
		n, err := strconv.Atoi(strings.Join(args, ""))
		if err != nil || n < 1 || n > len(chips) {
			return true, errors.Errorf("usage: /ask 1-%d", len(chips))
		}
		r.stream(r.mgr.Ask(chips[n-1]), intent.IsBuildIntent(chips[n-1]))

	case "/web":
		enabled := !r.mgr.WebEnabled()
		if len(args) > 0 {
			enabled = strings.EqualFold(args[0], "on")
		}
		r.mgr.SetWebEnabled(enabled)
		fmt.Fprintln(r.out, SuccessStyle.Render("[OK]"), "Web search:", onOff(enabled))

	case "/copy":
		if len(args) > 0 && args[0] == "all" {
			r.mgr.CopyTranscript()
		} else if !r.mgr.CopyAnswer() {
			return true, errors.New("no answer to copy")
		}

	case "/share":
		r.mgr.Share()

	case "/export":
		dir := r.opts.ExportDir
		if len(args) > 0 {
			dir = args[0]
		}
		if dir == "" {
			dir = "."
		}
		path, err := r.mgr.ExportTranscript(dir)
		if err != nil {
			return true, err
		}
		fmt.Fprintln(r.out, SuccessStyle.Render("[OK]"), "Exported", path)

	case "/history":
		return true, r.printHistory()

	case "/load":
		if len(args) == 0 {
			return true, errors.New("usage: /load <id>")
		}
		conv, err := r.opts.History.Load(args[0])
		if err != nil {
			return true, err
		}
		r.mgr.Load(conv.ID, conv.Messages)
		r.dock.Reset()
		fmt.Fprintln(r.out, SuccessStyle.Render("[OK]"), "Loaded", conv.ID, "·", len(conv.Messages), "messages")

	case "/preview":
		return true, r.openPreview()

	default:
		return true, errors.Errorf("unknown command: %s (type /help for commands)", command)
	}
	return true, nil
}

// openPreview writes the current artifact to a temporary file and opens it.
func (r *replSession) openPreview() error {
	if !r.dock.IsOpen() {
		return errors.New("nothing to preview yet")
	}
	path := filepath.Join(os.TempDir(), "zen-preview.html")
	if err := util.AtomicWriteFile(path, []byte(r.dock.Document()), 0600); err != nil {
		return err
	}
	fmt.Fprintln(r.out, SuccessStyle.Render("[OK]"), "Preview written to", path)
	return r.opts.Open("file://" + path)
}

func (r *replSession) printHistory() error {
	if r.opts.History == nil {
		return errors.New("history is not available")
	}
	metas, err := r.opts.History.List()
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, storage.FormatSessionList(metas))
	return nil
}

func (r *replSession) printWelcome() {
	fmt.Fprintln(r.out, TitleStyle.Render("zen "+Version))
	fmt.Fprintln(r.out, field("Model:", r.mgr.CurrentModelID()))
	if n := r.mgr.Conversation().Len(); n > 0 {
		fmt.Fprintln(r.out, field("Chat:", fmt.Sprintf("%s (%d messages)", r.mgr.ChatID(), n)))
	}
	fmt.Fprintln(r.out, DimStyle.Render("Type /help for commands, Ctrl+D to exit."))
	fmt.Fprintln(r.out)
}

func (r *replSession) printHelp() {
	rows := [][2]string{
		{"/new", "start a new chat"},
		{"/model [id]", "show or switch the model"},
		{"/rerun <id>", "re-run the last prompt with another model"},
		{"/reload", "regenerate the last answer"},
		{"/ask N", "send follow-up suggestion N"},
		{"/web [on|off]", "toggle web search"},
		{"/copy [all]", "copy the last answer or the whole chat"},
		{"/share", "share the chat"},
		{"/export [dir]", "write the transcript as markdown"},
		{"/history", "list saved chats"},
		{"/load <id>", "open a saved chat"},
		{"/preview", "open the last artifact in the browser"},
		{"/quit", "exit"},
	}
	fmt.Fprintln(r.out, TitleStyle.Render("Commands"))
	for _, row := range rows {
		fmt.Fprintln(r.out, field(row[0], row[1]))
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
