// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jeranaias/zen-tui/internal/artifact"
	"github.com/jeranaias/zen-tui/internal/host"
	"github.com/jeranaias/zen-tui/internal/preview"
	"github.com/jeranaias/zen-tui/internal/session"
	"github.com/jeranaias/zen-tui/internal/util"
)

// ErrNotRenderable is returned when the input holds no previewable artifact.
var ErrNotRenderable = errors.New("no renderable code block or chart found")

type renderOptions struct {
	out         string
	serve       bool
	addr        string
	open        bool
	contentJSON bool
}

func newRenderCommand(gf *globalFlags) *cobra.Command {
	opts := &renderOptions{}
	cmd := &cobra.Command{
		Use:   "render [text...]",
		Short: "Build the preview page for a reply",
		Long: `Reads a reply from the arguments or stdin, finds its code block or chart
and writes the standalone sandbox page that the dock would preview.

With --serve the page is served by the live preview server until Ctrl+C.`,
		Example: `  cat answer.md | zen render -o page.html
  cat answer.md | zen render --serve --open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, gf, args, opts)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.out, "output", "o", "", "write the page to a file instead of stdout")
	f.BoolVar(&opts.serve, "serve", false, "serve the page with the live preview server")
	f.StringVar(&opts.addr, "addr", "", "preview listen address (default from config)")
	f.BoolVar(&opts.open, "open", false, "open the served page in the browser")
	f.BoolVar(&opts.contentJSON, "content-json", false, "input is a JSON message content value")
	return cmd
}

// RenderDocument classifies text and builds its preview page.
func RenderDocument(text string) (string, artifact.Result, error) {
	res := artifact.Classify(session.CleanupForArtifact(text))
	if !res.Renderable() {
		return "", res, ErrNotRenderable
	}
	return artifact.BuildDocument(res), res, nil
}

func runRender(cmd *cobra.Command, gf *globalFlags, args []string, opts *renderOptions) error {
	text, err := readInput(cmd, args, opts.contentJSON)
	if err != nil {
		return err
	}
	doc, _, err := RenderDocument(text)
	if err != nil {
		return err
	}

	if !opts.serve {
		if opts.out == "" {
			_, err := fmt.Fprint(cmd.OutOrStdout(), doc)
			return err
		}
		if err := util.AtomicWriteFile(opts.out, []byte(doc), 0644); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), SuccessStyle.Render("[OK]"), "Wrote", opts.out)
		return nil
	}

	cfg, _, err := loadConfig(gf)
	if err != nil {
		return err
	}
	setupConsoleLogging(cfg, gf, cmd.ErrOrStderr())
	addr := opts.addr
	if addr == "" {
		addr = cfg.Dock.PreviewAddr
	}
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	srv := preview.New(addr)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	srv.Publish(doc)
	fmt.Fprintln(cmd.OutOrStdout(), field("Preview:", srv.URL()))
	fmt.Fprintln(cmd.OutOrStdout(), DimStyle.Render("Ctrl+C to stop"))
	if opts.open {
		if err := host.Open(srv.URL()); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render("[Warning]"), "could not open browser:", err)
		}
	}
	<-ctx.Done()
	return srv.Shutdown(context.Background())
}
