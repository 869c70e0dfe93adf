package cli

import (
	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))
)

func statusStyle(status domain.KnowledgeBaseStatus) lipgloss.Style {
	switch status {
	case domain.KnowledgeBaseReady:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	case domain.KnowledgeBaseError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	case domain.KnowledgeBaseProcessing:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	}
}

func field(label, value string) string {
	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}
