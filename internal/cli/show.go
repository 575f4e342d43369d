package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/course-portal-api/internal/dto"
	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/internal/view"
	"github.com/noah-isme/course-portal-api/pkg/client"
)

func isNotFound(err error) bool {
	return errors.Is(err, client.ErrNotFound)
}

func newModuleCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "module",
		Short: "Show a module page",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show the module's extracted outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := view.NewPage[*dto.OutlineResponse](isNotFound)
			snap, module := loadModulePage(cmd.Context(), app, page, args[0])
			renderModulePage(cmd.OutOrStdout(), module, snap)
			return nil
		},
	})
	return cmd
}

// loadModulePage fetches the module header and its outline side by side. A
// failed header lookup only drops the header.
func loadModulePage(ctx context.Context, app *App, page *view.Page[*dto.OutlineResponse], moduleID string) (view.Snapshot[*dto.OutlineResponse], *models.Module) {
	var (
		snap   view.Snapshot[*dto.OutlineResponse]
		module *models.Module
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		modules, err := app.Portal.ListModules(gctx, models.ModuleFilter{Search: moduleID})
		if err != nil {
			app.logger().Debug("module header lookup failed", zap.String("module_id", moduleID), zap.Error(err))
			return nil
		}
		for i := range modules {
			if strings.EqualFold(modules[i].ID, moduleID) {
				module = &modules[i]
				break
			}
		}
		return nil
	})
	g.Go(func() error {
		snap = page.Load(gctx, view.Key{ModuleID: moduleID}, func(ctx context.Context, key view.Key) (*dto.OutlineResponse, error) {
			return app.Portal.Outline(ctx, key.ModuleID)
		})
		return nil
	})
	_ = g.Wait()
	return snap, module
}

func newTopicCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topic",
		Short: "Show a topic page",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show <module-id> <topic>",
		Short: "Show a signed link to the topic's slides",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := view.NewPage[*models.SlideReference](isNotFound)
			snap := loadTopicPage(cmd.Context(), app, page, args[0], args[1])
			renderTopicPage(cmd.OutOrStdout(), snap)
			return nil
		},
	})
	return cmd
}

func loadTopicPage(ctx context.Context, app *App, page *view.Page[*models.SlideReference], moduleID, topic string) view.Snapshot[*models.SlideReference] {
	return page.Load(ctx, view.Key{ModuleID: moduleID, Topic: topic}, func(ctx context.Context, key view.Key) (*models.SlideReference, error) {
		return app.Portal.SlideLink(ctx, key.ModuleID, key.Topic)
	})
}

func renderModulePage(w io.Writer, module *models.Module, snap view.Snapshot[*dto.OutlineResponse]) {
	if module != nil {
		fmt.Fprintf(w, "%s  %s (%s %s)\n\n", module.ID, module.Name, module.Year, module.Term)
	} else {
		fmt.Fprintf(w, "%s\n\n", snap.Key.ModuleID)
	}

	switch snap.State {
	case view.StateLoading:
		fmt.Fprintln(w, "Loading…")
	case view.StateFound:
		renderOutline(w, snap.Content)
	case view.StateError:
		fmt.Fprintf(w, "[error] %s\n", snap.Banner())
	case view.StateNotFound:
		fmt.Fprintln(w, "No course outline uploaded yet.")
	}
	if snap.ShowUpload() {
		fmt.Fprintf(w, "Upload one with: portal upload outline %s <file.pdf>\n", snap.Key.ModuleID)
	}
}

func renderOutline(w io.Writer, outline *dto.OutlineResponse) {
	if outline == nil {
		return
	}
	o := outline.Outline
	if o.Summary != "" {
		fmt.Fprintf(w, "Summary\n  %s\n\n", o.Summary)
	}
	if len(o.Lecturers) > 0 {
		fmt.Fprintln(w, "Lecturers")
		for _, l := range o.Lecturers {
			if l.Email != "" {
				fmt.Fprintf(w, "  - %s <%s>\n", l.Name, l.Email)
			} else {
				fmt.Fprintf(w, "  - %s\n", l.Name)
			}
		}
		fmt.Fprintln(w)
	}
	if len(o.Topics) > 0 {
		fmt.Fprintln(w, "Topics")
		for i, t := range o.Topics {
			fmt.Fprintf(w, "  %d. %s\n", i+1, t)
		}
		fmt.Fprintln(w)
	}
	if len(o.Assessments) > 0 {
		fmt.Fprintln(w, "Assessments")
		for _, a := range o.Assessments {
			fmt.Fprintf(w, "  - %s: %g%%\n", a.Method, a.Weighting)
		}
		fmt.Fprintln(w)
	}
	if len(o.LearningOutcomes) > 0 {
		fmt.Fprintln(w, "Learning outcomes")
		for _, lo := range o.LearningOutcomes {
			fmt.Fprintf(w, "  - %s\n", lo)
		}
		fmt.Fprintln(w)
	}
	if tb := o.Textbook; tb != nil && tb.Title != "" {
		fmt.Fprintln(w, "Textbook")
		line := "  " + tb.Title
		if tb.Edition != "" {
			line += ", " + tb.Edition
			if !strings.Contains(strings.ToLower(tb.Edition), "edition") {
				line += " edition"
			}
		}
		if len(tb.Authors) > 0 {
			line += " by " + strings.Join(tb.Authors, ", ")
		}
		if tb.Publisher != "" {
			line += " (" + tb.Publisher
			if tb.Year != "" {
				line += ", " + tb.Year
			}
			line += ")"
		}
		fmt.Fprintln(w, line)
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Last updated %s\n", outline.UpdatedAt.Format("2006-01-02 15:04"))
}

func renderTopicPage(w io.Writer, snap view.Snapshot[*models.SlideReference]) {
	fmt.Fprintf(w, "%s / %s\n\n", snap.Key.ModuleID, snap.Key.Topic)
	switch snap.State {
	case view.StateLoading:
		fmt.Fprintln(w, "Loading…")
	case view.StateFound:
		fmt.Fprintf(w, "Slides: %s\nLink expires %s\n", snap.Content.URL, snap.Content.ExpiresAt.Local().Format("2006-01-02 15:04"))
	case view.StateError:
		fmt.Fprintf(w, "[error] %s\n", snap.Banner())
	case view.StateNotFound:
		fmt.Fprintln(w, "No slides uploaded for this topic yet.")
	}
	if snap.ShowUpload() {
		fmt.Fprintf(w, "Upload them with: portal upload slides %s %q <file.pdf>\n", snap.Key.ModuleID, snap.Key.Topic)
	}
}
