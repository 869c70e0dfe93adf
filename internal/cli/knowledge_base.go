package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Rrens/smart-assistant/internal/domain"
	"github.com/spf13/cobra"
)

const watchTick = 250 * time.Millisecond

func newKnowledgeBaseCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "kb",
		Aliases: []string{"knowledge-base"},
		Short:   "Manage knowledge base imports",
	}

	cmd.AddCommand(
		newKnowledgeBaseCreateCommand(app),
		newKnowledgeBaseListCommand(app),
		newKnowledgeBaseStatusCommand(app),
		newKnowledgeBaseDeleteCommand(app),
		newKnowledgeBaseWatchCommand(app),
	)
	return cmd
}

func newKnowledgeBaseCreateCommand(app *App) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "create <name> <path>",
		Short: "Start importing documents from a path",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.KnowledgeBaseCreate{Name: strings.TrimSpace(args[0]), Path: strings.TrimSpace(args[1])}
			if !app.KnowledgeBases.CreateKnowledgeBase(cmd.Context(), req) {
				return errors.New(app.KnowledgeBases.State().Error)
			}

			current := app.KnowledgeBases.State().CurrentImport
			if current == nil {
				return nil
			}
			printKnowledgeBase(cmd.OutOrStdout(), current)
			if !watch {
				app.KnowledgeBases.StopPolling()
				return nil
			}
			return watchKnowledgeBase(cmd.Context(), cmd.OutOrStdout(), app, current.ID)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Follow the import until it finishes")
	return cmd
}

func newKnowledgeBaseListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List knowledge bases",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.KnowledgeBases.GetKnowledgeBases(cmd.Context()) {
				return errors.New(app.KnowledgeBases.State().Error)
			}

			kbs := app.KnowledgeBases.State().KnowledgeBases
			out := cmd.OutOrStdout()
			if len(kbs) == 0 {
				fmt.Fprintln(out, labelStyle.Render("No knowledge bases yet"))
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, headerStyle.Render("ID")+"\t"+headerStyle.Render("NAME")+"\t"+
				headerStyle.Render("STATUS")+"\t"+headerStyle.Render("DOCS")+"\t"+headerStyle.Render("CHUNKS"))
			for _, kb := range kbs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n",
					idStyle.Render(kb.ID),
					kb.Name,
					statusStyle(kb.Status).Render(string(kb.Status)),
					kb.DocumentCount,
					kb.TotalChunks,
				)
			}
			return w.Flush()
		},
	}
}

func newKnowledgeBaseStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id>",
		Short: "Fetch the import status of a knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := loadKnowledgeBase(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if !kb.Status.IsTerminal() {
				app.KnowledgeBases.GetKnowledgeBaseStatus(cmd.Context(), kb.ID)
				if refreshed := app.KnowledgeBases.GetKnowledgeBaseByID(kb.ID); refreshed != nil {
					kb = refreshed
				}
			}
			printKnowledgeBase(cmd.OutOrStdout(), kb)
			return nil
		},
	}
}

func newKnowledgeBaseDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a knowledge base",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.KnowledgeBases.DeleteKnowledgeBase(cmd.Context(), args[0]) {
				return errors.New(app.KnowledgeBases.State().Error)
			}
			return nil
		},
	}
}

func newKnowledgeBaseWatchCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <id>",
		Short: "Follow an import until it is ready or failed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := loadKnowledgeBase(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			printKnowledgeBase(cmd.OutOrStdout(), kb)
			if kb.Status.IsTerminal() {
				return nil
			}

			app.KnowledgeBases.StartPolling(kb.ID)
			return watchKnowledgeBase(cmd.Context(), cmd.OutOrStdout(), app, kb.ID)
		},
	}
}

func loadKnowledgeBase(ctx context.Context, app *App, id string) (*domain.KnowledgeBase, error) {
	if !app.KnowledgeBases.GetKnowledgeBases(ctx) {
		return nil, errors.New(app.KnowledgeBases.State().Error)
	}
	kb := app.KnowledgeBases.GetKnowledgeBaseByID(id)
	if kb == nil {
		return nil, fmt.Errorf("knowledge base not found: %s", id)
	}
	return kb, nil
}

// watchKnowledgeBase prints every status change of id until the poller
// stops or ctx is done.
func watchKnowledgeBase(ctx context.Context, out io.Writer, app *App, id string) error {
	defer app.KnowledgeBases.StopPolling()

	ticker := time.NewTicker(watchTick)
	defer ticker.Stop()

	var last domain.KnowledgeBaseStatus
	if kb := app.KnowledgeBases.GetKnowledgeBaseByID(id); kb != nil {
		last = kb.Status
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			kb := app.KnowledgeBases.GetKnowledgeBaseByID(id)
			if kb == nil {
				return fmt.Errorf("knowledge base disappeared: %s", id)
			}
			if kb.Status != last {
				last = kb.Status
				fmt.Fprintf(out, "%s %s  %s\n",
					labelStyle.Render(time.Now().Format("15:04:05")),
					statusStyle(kb.Status).Render(string(kb.Status)),
					labelStyle.Render(fmt.Sprintf("%d documents, %d chunks", kb.DocumentCount, kb.TotalChunks)),
				)
			}
			if kb.Status.IsTerminal() {
				if kb.Status == domain.KnowledgeBaseError {
					return errors.New("import failed: " + derefOr(kb.ErrorDetails, "unknown error"))
				}
				return nil
			}
			if app.KnowledgeBases.PollingID() != id {
				return nil
			}
		}
	}
}

func printKnowledgeBase(out io.Writer, kb *domain.KnowledgeBase) {
	fmt.Fprintln(out, headerStyle.Render(kb.Name)+" "+idStyle.Render(kb.ID))
	fmt.Fprintln(out, field("Path", kb.Path))
	fmt.Fprintln(out, labelStyle.Render("Status:")+" "+statusStyle(kb.Status).Render(string(kb.Status)))
	fmt.Fprintln(out, field("Documents", fmt.Sprintf("%d", kb.DocumentCount)))
	fmt.Fprintln(out, field("Chunks", fmt.Sprintf("%d", kb.TotalChunks)))
	if kb.ImportedAt != nil {
		fmt.Fprintln(out, field("Imported", kb.ImportedAt.Local().Format(time.RFC822)))
	}
	if kb.ErrorDetails != nil {
		fmt.Fprintln(out, errorStyle.Render("Error: "+*kb.ErrorDetails))
	}
}

func derefOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
