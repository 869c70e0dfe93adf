package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorInfo    = lipgloss.Color("#3B82F6")
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")

	messageStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

// TerminalNotifier prints colored notifications to a writer
type TerminalNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminalNotifier creates a notifier writing to out
func NewTerminalNotifier(out io.Writer) *TerminalNotifier {
	return &TerminalNotifier{out: out}
}

func (t *TerminalNotifier) Notify(n Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	line := titleStyle(n.Level).Render(symbol(n.Level) + " " + n.Title)
	if n.Message != "" {
		line += " " + messageStyle.Render(n.Message)
	}
	fmt.Fprintln(t.out, line)
}

func titleStyle(level Level) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch level {
	case LevelSuccess:
		return style.Foreground(colorSuccess)
	case LevelError:
		return style.Foreground(colorError)
	default:
		return style.Foreground(colorInfo)
	}
}

func symbol(level Level) string {
	switch level {
	case LevelSuccess:
		return "✓"
	case LevelError:
		return "✗"
	default:
		return "•"
	}
}
