// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/zen-tui/internal/session"
	"github.com/jeranaias/zen-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

const (
	// DefaultToastDuration is how long info and success toasts stay up.
	DefaultToastDuration = 4 * time.Second

	// ErrorToastDuration is longer so errors can be read.
	ErrorToastDuration = 8 * time.Second

	maxToasts = 4
)

// Toast is a non-blocking notification drawn in the corner.
type Toast struct {
	ID        int
	Level     session.Level
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// expired reports whether the toast is due for removal at now.
func (t Toast) expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager keeps the visible toasts, newest first.
// It implements session.Notifier.
type ToastManager struct {
	mu     sync.Mutex
	toasts []Toast
	nextID int
	now    func() time.Time
}

// NewToastManager creates an empty manager.
func NewToastManager() *ToastManager {
	return &ToastManager{nextID: 1, now: time.Now}
}

// Notify adds a toast for a session notice.
func (m *ToastManager) Notify(n session.Notice) {
	m.Add(n.Level, n.Text)
}

// Add shows message at level and returns the toast id.
func (m *ToastManager) Add(level session.Level, message string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := DefaultToastDuration
	if level == session.LevelError || level == session.LevelWarning {
		d = ErrorToastDuration
	}
	t := Toast{ID: m.nextID, Level: level, Message: message, CreatedAt: m.now(), Duration: d}
	m.nextID++

	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[:maxToasts]
	}
	return t.ID
}

// Dismiss removes the newest toast.
func (m *ToastManager) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.toasts) > 0 {
		m.toasts = m.toasts[1:]
	}
}

// Tick drops expired toasts and reports whether any remain.
func (m *ToastManager) Tick() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	active := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.expired(now) {
			active = append(active, t)
		}
	}
	m.toasts = active
	return len(m.toasts) > 0
}

// Toasts returns a copy of the visible toasts.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Toast(nil), m.toasts...)
}

// =============================================================================
// MESSAGES
// =============================================================================

// ToastTickMsg drives toast expiry.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd schedules the next expiry check.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// RENDERING
// =============================================================================

// RenderToasts stacks the toasts vertically, newest on top.
func RenderToasts(theme *styles.Theme, toasts []Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}
	maxWidth := 60
	if width > 0 && width-4 < maxWidth {
		maxWidth = width - 4
	}
	if maxWidth < 20 {
		maxWidth = 20
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		var style lipgloss.Style
		var icon string
		switch t.Level {
		case session.LevelError:
			style, icon = theme.ToastError, styles.StatusIndicators.Error
		case session.LevelWarning:
			style, icon = theme.ToastWarning, styles.StatusIndicators.Warning
		case session.LevelSuccess:
			style, icon = theme.ToastSuccess, styles.StatusIndicators.Success
		default:
			style, icon = theme.ToastInfo, styles.StatusIndicators.Info
		}
		rendered = append(rendered, style.Width(maxWidth).Render(icon+" "+strings.TrimSpace(t.Message)))
	}
	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}
