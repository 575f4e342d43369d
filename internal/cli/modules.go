package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/course-portal-api/internal/dto"
	"github.com/noah-isme/course-portal-api/internal/models"
)

func newModulesCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List, add and delete modules",
	}
	cmd.AddCommand(newModulesListCommand(app), newModulesAddCommand(app), newModulesDeleteCommand(app), newModulesTermsCommand(app))
	return cmd
}

func newModulesListCommand(app *App) *cobra.Command {
	var filter models.ModuleFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			modules, err := app.Portal.ListModules(cmd.Context(), filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(modules) == 0 {
				fmt.Fprintln(out, "No modules found.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tYEAR\tTERM")
			for _, m := range modules {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, m.Name, m.Year, m.Term)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&filter.Year, "year", "", "only modules of this academic year")
	cmd.Flags().StringVar(&filter.Term, "term", "", "only modules of this term")
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "match module id or name")
	return cmd
}

func newModulesAddCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <id> <name> <year> <term>",
		Short: "Add a module",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := app.Portal.CreateModule(cmd.Context(), dto.CreateModuleRequest{
				ModuleID: args[0],
				Name:     args[1],
				Year:     args[2],
				Term:     args[3],
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Module added: %s %s (%s %s)\n", module.ID, module.Name, module.Year, module.Term)
			return nil
		},
	}
}

func newModulesDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a module with its outline and slides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Portal.DeleteModule(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Module %s deleted.\n", args[0])
			return nil
		},
	}
}

func newModulesTermsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "terms",
		Short: "List the year/term combinations in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			terms, err := app.Portal.Terms(cmd.Context())
			if err != nil {
				return err
			}
			for _, t := range terms {
				fmt.Fprintln(cmd.OutOrStdout(), t.Label)
			}
			return nil
		},
	}
}
