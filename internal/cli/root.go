package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand assembles the portal command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "portal",
		Short:         "Browse course modules, upload outlines and slides, and chat about topics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.out())
	root.SetIn(app.in())

	root.AddCommand(
		newModulesCommand(app),
		newModuleCommand(app),
		newTopicCommand(app),
		newUploadCommand(app),
		newChatCommand(app),
	)
	return root
}
