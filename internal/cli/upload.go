package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/course-portal-api/internal/dto"
	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/internal/upload"
	"github.com/noah-isme/course-portal-api/internal/view"
)

func newUploadCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a course outline or a topic's slides",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "outline <module-id> <file.pdf>",
		Short: "Upload a course outline and show the extracted result",
		Long:  "Only the first file is used; any extra files are ignored.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			moduleID := args[0]
			page := view.NewPage[*dto.OutlineResponse](isNotFound)
			refresh := func(upload.Target) {
				snap, module := loadModulePage(cmd.Context(), app, page, moduleID)
				renderModulePage(cmd.OutOrStdout(), module, snap)
			}
			return runUpload(cmd, app, args[1:], upload.Outline(moduleID), refresh)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "slides <module-id> <topic> <file.pdf>",
		Short: "Upload a topic's slide deck and show its link",
		Long:  "Only the first file is used; any extra files are ignored.",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			moduleID, topic := args[0], args[1]
			page := view.NewPage[*models.SlideReference](isNotFound)
			refresh := func(upload.Target) {
				renderTopicPage(cmd.OutOrStdout(), loadTopicPage(cmd.Context(), app, page, moduleID, topic))
			}
			return runUpload(cmd, app, args[2:], upload.Slides(moduleID, topic), refresh)
		},
	})
	return cmd
}

func runUpload(cmd *cobra.Command, app *App, paths []string, target upload.Target, refresh func(upload.Target)) error {
	out := cmd.OutOrStdout()
	gate := upload.NewGate(app.Limits)

	candidate, err := upload.FromFile(paths[0])
	if err != nil {
		return err
	}
	decision := gate.Propose(candidate)
	if !decision.Accepted {
		for _, msg := range decision.Messages {
			fmt.Fprintf(out, "Rejected: %s\n", msg)
		}
		return errors.New(decision.Error())
	}

	submitter := upload.NewSubmitter(gate, app.Portal, refresh, app.logger())
	fmt.Fprintf(out, "Uploading %s…\n", candidate.Name)
	if err := submitter.Submit(cmd.Context(), target); err != nil {
		fmt.Fprintf(out, "Upload failed: %s\n", err)
		return err
	}
	return nil
}
