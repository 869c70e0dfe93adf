package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const chatHelp = `Commands:
  /new [title]      Start a new conversation
  /sessions         List conversations
  /switch <n>       Switch to conversation n
  /rename <title>   Rename the active conversation
  /delete [n]       Delete conversation n (default: active)
  /history          Show the active conversation
  /clear            Delete all conversations
  /help             Show this help
  /exit             Leave the chat`

// lineReader is the prompt source of the chat loop
type lineReader interface {
	Prompt(prompt string) (string, error)
}

// markdownRenderer turns a reply into terminal output
type markdownRenderer interface {
	Render(in string) (string, error)
}

func newChatCommand(app *App) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the assistant",
		Long:  "Start an interactive conversation with the assistant.\n\n" + chatHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var renderer markdownRenderer
			if !plain {
				r, err := glamour.NewTermRenderer(
					glamour.WithAutoStyle(),
					glamour.WithWordWrap(80),
				)
				if err != nil {
					log.Debug().Err(err).Msg("Markdown renderer unavailable, using plain output")
				} else {
					renderer = r
				}
			}

			line := liner.NewLiner()
			line.SetCtrlCAborts(true)
			historyFile := chatHistoryPath()
			loadHistory(line, historyFile)
			defer func() {
				saveHistory(line, historyFile)
				line.Close()
			}()

			fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render("Smart Assistant")+" "+labelStyle.Render("(/help for commands)"))
			repl := &chatREPL{app: app, out: cmd.OutOrStdout(), input: historyReader{line}, renderer: renderer}
			return repl.run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print replies without markdown rendering")
	return cmd
}

type chatREPL struct {
	app      *App
	out      io.Writer
	input    lineReader
	renderer markdownRenderer
}

func (r *chatREPL) run(ctx context.Context) error {
	for {
		text, err := r.input.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "/") {
			if quit := r.command(text); quit {
				return nil
			}
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		r.send(ctx, text)
	}
}

func (r *chatREPL) send(ctx context.Context, text string) {
	chat := r.app.Chat
	before := len(chat.GetActiveMessages())

	fmt.Fprintln(r.out, labelStyle.Render("thinking..."))
	chat.SendMessage(ctx, text)

	msgs := chat.GetActiveMessages()
	for i := before; i < len(msgs); i++ {
		if msgs[i].Sender != domain.RoleUser {
			r.printMessage(msgs[i])
		}
	}
}

// command handles a slash command and reports whether the loop should end
func (r *chatREPL) command(text string) bool {
	fields := strings.Fields(text)
	name := strings.ToLower(fields[0])
	rest := strings.TrimSpace(strings.TrimPrefix(text, fields[0]))
	chat := r.app.Chat

	switch name {
	case "/exit", "/quit", "/q":
		return true
	case "/help", "/h":
		fmt.Fprintln(r.out, chatHelp)
	case "/new":
		chat.CreateSession(rest)
		if s := chat.GetActiveSession(); s != nil {
			fmt.Fprintln(r.out, field("Started", s.Title))
		}
	case "/sessions", "/ls":
		r.printSessions()
	case "/switch":
		id, err := r.sessionAt(rest)
		if err != nil {
			fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
			return false
		}
		chat.SelectSession(id)
		r.printHistory()
	case "/rename":
		id := chat.ActiveSessionID()
		if id == "" || rest == "" {
			fmt.Fprintln(r.out, errorStyle.Render("usage: /rename <title> with an active conversation"))
			return false
		}
		chat.UpdateSessionTitle(id, rest)
	case "/delete":
		id := chat.ActiveSessionID()
		if rest != "" {
			var err error
			if id, err = r.sessionAt(rest); err != nil {
				fmt.Fprintln(r.out, errorStyle.Render(err.Error()))
				return false
			}
		}
		if id == "" {
			fmt.Fprintln(r.out, errorStyle.Render("no conversation to delete"))
			return false
		}
		chat.DeleteSession(id)
	case "/history":
		r.printHistory()
	case "/clear":
		chat.ClearAllSessions()
	default:
		fmt.Fprintln(r.out, errorStyle.Render("unknown command: "+name))
	}
	return false
}

func (r *chatREPL) sessionAt(arg string) (string, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	sessions := r.app.Chat.Sessions()
	if err != nil || n < 1 || n > len(sessions) {
		return "", fmt.Errorf("no conversation numbered %q", arg)
	}
	return sessions[n-1].ID, nil
}

func (r *chatREPL) printSessions() {
	sessions := r.app.Chat.Sessions()
	if len(sessions) == 0 {
		fmt.Fprintln(r.out, labelStyle.Render("No conversations yet"))
		return
	}
	active := r.app.Chat.ActiveSessionID()
	for i, s := range sessions {
		marker := " "
		if s.ID == active {
			marker = "*"
		}
		fmt.Fprintf(r.out, "%s %2d  %s  %s\n", marker, i+1, s.Title,
			labelStyle.Render(s.UpdatedAt.Local().Format("Jan 2 15:04")))
	}
}

func (r *chatREPL) printHistory() {
	for _, msg := range r.app.Chat.GetActiveMessages() {
		r.printMessage(msg)
	}
}

func (r *chatREPL) printMessage(msg domain.Message) {
	switch msg.Sender {
	case domain.RoleUser:
		fmt.Fprintln(r.out, promptStyle.Render("you: ")+msg.Content)
	case domain.RoleSystem:
		fmt.Fprintln(r.out, systemStyle.Render(msg.Content))
	default:
		fmt.Fprintln(r.out, r.render(msg.Content))
	}
}

func (r *chatREPL) render(content string) string {
	if r.renderer == nil {
		return content
	}
	rendered, err := r.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// historyReader records non-empty input in the liner history
type historyReader struct {
	line *liner.State
}

func (h historyReader) Prompt(prompt string) (string, error) {
	input, err := h.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		h.line.AppendHistory(input)
	}
	return input, nil
}

func chatHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "smart-assistant", "chat_history")
}

func loadHistory(line *liner.State, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	line.ReadHistory(f)
}

func saveHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
