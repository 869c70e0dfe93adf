package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/Rrens/smart-assistant/internal/apiclient"
	"github.com/Rrens/smart-assistant/internal/config"
	"github.com/Rrens/smart-assistant/internal/service"
	"github.com/Rrens/smart-assistant/internal/storage"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

// App bundles the components the commands operate on
type App struct {
	Config         *config.Config
	Store          *storage.Store
	Client         *apiclient.Client
	Auth           *service.AuthManager
	Chat           *service.ChatManager
	KnowledgeBases *service.KnowledgeBaseManager

	// PasswordPrompt reads a password when none is passed by flag
	PasswordPrompt func(prompt string) (string, error)
}

// NewRootCommand builds the command tree around app
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "assistant",
		Short: "Terminal client for the smart assistant backend",
		Long: `A terminal client for the smart assistant backend.

Sign in, manage knowledge base imports and chat with the assistant
from the command line.

Quick Start:
  assistant login --email you@example.com --remember
  assistant kb create "Team notes" /srv/docs/notes --watch
  assistant chat`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newHealthCommand(app),
		newInfoCommand(app),
		newRegisterCommand(app),
		newLoginCommand(app),
		newLogoutCommand(app),
		newWhoamiCommand(app),
		newKnowledgeBaseCommand(app),
		newChatCommand(app),
	)
	return root
}

// Execute runs the command tree and reports failures on stderr
func Execute(ctx context.Context, app *App) int {
	if err := NewRootCommand(app).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		return 1
	}
	return 0
}
