// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/jeranaias/zen-tui/internal/model"
	"github.com/jeranaias/zen-tui/internal/storage"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML page. Message text
// is rendered as GitHub-flavored Markdown; raw HTML in messages is omitted.
type HTMLExporter struct {
	options *Options
	md      goldmark.Markdown
}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{
		options: opts,
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Export converts a conversation to HTML.
func (e *HTMLExporter) Export(conv *storage.StoredConversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", html.EscapeString(conv.Summary))
	sb.WriteString("    <meta name=\"generator\" content=\"zen\">\n")
	if !conv.CreatedAt.IsZero() {
		fmt.Fprintf(&sb, "    <meta name=\"date\" content=\"%s\">\n", conv.CreatedAt.Format(time.RFC3339))
	}
	sb.WriteString(pageCSS)
	sb.WriteString("</head>\n")
	fmt.Fprintf(&sb, "<body class=\"%s-theme\">\n", theme)
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		e.renderHeader(&sb, conv)
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range conv.Messages {
		if err := e.renderMessage(&sb, msg); err != nil {
			return nil, err
		}
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	fmt.Fprintf(&sb, "            <p>Exported from <strong>zen</strong> on %s</p>\n",
		e.options.now().Format("January 2, 2006 at 3:04 PM"))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString(pageScript)
	sb.WriteString("</body>\n</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns ".html".
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the HTML MIME type.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING
// =============================================================================

func (e *HTMLExporter) renderHeader(sb *strings.Builder, conv *storage.StoredConversation) {
	sb.WriteString("        <header class=\"header\">\n")
	fmt.Fprintf(sb, "            <h1>%s</h1>\n", html.EscapeString(conv.Summary))
	sb.WriteString("            <div class=\"metadata\">\n")
	if conv.Model != "" {
		fmt.Fprintf(sb, "                <span class=\"meta-item\"><strong>Model:</strong> %s</span>\n", html.EscapeString(conv.Model))
	}
	if !conv.CreatedAt.IsZero() {
		fmt.Fprintf(sb, "                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(conv.CreatedAt))
	}
	fmt.Fprintf(sb, "                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(conv.Messages))
	sb.WriteString("                <button class=\"theme-toggle\" onclick=\"toggleTheme()\" title=\"Toggle theme\">[Theme]</button>\n")
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")
}

func (e *HTMLExporter) renderMessage(sb *strings.Builder, msg model.Message) error {
	role := string(msg.Role)
	if !msg.Role.Valid() {
		role = "system"
	}
	fmt.Fprintf(sb, "            <article class=\"message message-%s\">\n", role)
	sb.WriteString("                <div class=\"message-header\">\n")
	fmt.Fprintf(sb, "                    <span class=\"role\">%s</span>\n", html.EscapeString(msg.Role.DisplayName()))
	if e.options.IncludeTimestamps && !msg.CreatedAt.IsZero() {
		fmt.Fprintf(sb, "                    <time>%s</time>\n", msg.CreatedAt.Format("15:04:05"))
	}
	sb.WriteString("                </div>\n")
	sb.WriteString("                <div class=\"message-content\">\n")

	var buf bytes.Buffer
	if err := e.md.Convert([]byte(MessageBody(msg)), &buf); err != nil {
		return errors.Wrapf(err, "render message %s", msg.ID)
	}
	sb.Write(buf.Bytes())

	sb.WriteString("                </div>\n")
	sb.WriteString("            </article>\n")
	return nil
}

// =============================================================================
// EMBEDDED ASSETS
// =============================================================================

const pageCSS = `    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            line-height: 1.6;
            transition: background-color 0.3s, color 0.3s;
        }
        .dark-theme {
            --bg: #1a1b26; --surface: #24283b; --text: #c0caf5; --muted: #565f89;
            --accent: #7aa2f7; --user: #9ece6a; --assistant: #bb9af7; --code-bg: #16161e;
            --border: #3b4261;
        }
        .light-theme {
            --bg: #f5f5f5; --surface: #ffffff; --text: #2e3440; --muted: #6b7280;
            --accent: #2563eb; --user: #15803d; --assistant: #7c3aed; --code-bg: #f3f4f6;
            --border: #e5e7eb;
        }
        body { background: var(--bg); color: var(--text); }
        .container { max-width: 920px; margin: 0 auto; padding: 2rem 1rem; }
        .header { border-bottom: 1px solid var(--border); padding-bottom: 1rem; margin-bottom: 2rem; }
        .header h1 { font-size: 1.6rem; margin-bottom: 0.5rem; }
        .metadata { display: flex; flex-wrap: wrap; gap: 1rem; color: var(--muted); font-size: 0.9rem; align-items: center; }
        .theme-toggle {
            margin-left: auto; background: var(--surface); color: var(--text);
            border: 1px solid var(--border); border-radius: 6px; padding: 0.25rem 0.75rem; cursor: pointer;
        }
        .theme-toggle:hover { border-color: var(--accent); }
        .message {
            background: var(--surface); border: 1px solid var(--border); border-radius: 8px;
            padding: 1rem 1.25rem; margin-bottom: 1rem;
        }
        .message-header { display: flex; justify-content: space-between; margin-bottom: 0.5rem; color: var(--muted); font-size: 0.85rem; }
        .message-user .role { color: var(--user); font-weight: 600; }
        .message-assistant .role { color: var(--assistant); font-weight: 600; }
        .message-system .role { color: var(--muted); font-weight: 600; }
        .message-content p { margin: 0.5rem 0; }
        .message-content ul, .message-content ol { margin: 0.5rem 0 0.5rem 1.5rem; }
        .message-content pre {
            background: var(--code-bg); border: 1px solid var(--border); border-radius: 6px;
            padding: 0.75rem; overflow-x: auto; margin: 0.75rem 0;
        }
        .message-content code { font-family: "JetBrains Mono", Consolas, monospace; font-size: 0.9em; }
        .message-content table { border-collapse: collapse; margin: 0.75rem 0; }
        .message-content th, .message-content td { border: 1px solid var(--border); padding: 0.25rem 0.5rem; }
        .message-content a { color: var(--accent); }
        .footer { text-align: center; color: var(--muted); font-size: 0.8rem; margin-top: 2rem; }
        @media print {
            .theme-toggle { display: none; }
            .message { break-inside: avoid; }
        }
    </style>
`

const pageScript = `    <script>
        function toggleTheme() {
            const body = document.body;
            const next = body.classList.contains('dark-theme') ? 'light' : 'dark';
            body.classList.remove('dark-theme', 'light-theme');
            body.classList.add(next + '-theme');
            localStorage.setItem('zen-theme', next);
        }
        (function() {
            const saved = localStorage.getItem('zen-theme');
            if (saved === 'light' || saved === 'dark') {
                document.body.classList.remove('dark-theme', 'light-theme');
                document.body.classList.add(saved + '-theme');
            }
        })();
    </script>
`
