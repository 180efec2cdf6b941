// Garden commands: add, list, show, rm.
package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/seedfolk/greenhouse/pkg/types"
)

var gardenCmd = &cobra.Command{
	Use:   "garden",
	Short: "Manage gardens (bookmark collections)",
}

var (
	flagGardenDescription string
	flagGardenRmAll       bool
)

var gardenAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a garden",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		id, err := a.gardens.Insert(ctx, types.Garden{
			Name:        args[0],
			Description: flagGardenDescription,
		})
		if err != nil {
			return fmt.Errorf("add garden: %w", err)
		}

		fmt.Println("created garden", id)
		return nil
	},
}

var gardenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all gardens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		gardens, err := a.store.ListGardens(ctx)
		if err != nil {
			return fmt.Errorf("list gardens: %w", err)
		}

		if flagJSON {
			return printJSON(gardens)
		}
		for _, g := range gardens {
			fmt.Printf("%d\t%s\t%s\n", g.ID, g.Name, g.Description)
		}
		return nil
	},
}

var gardenShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a garden and its seeds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		view, err := a.gardens.GetWithSeeds(ctx, id)
		if err != nil {
			return fmt.Errorf("show garden: %w", err)
		}

		if flagJSON {
			return printJSON(view)
		}
		fmt.Printf("%d\t%s\t%s\n", view.ID, view.Name, view.Description)
		for _, seed := range view.Seeds {
			marker := " "
			if seed.IsFavorite {
				marker = "*"
			}
			fmt.Printf("  %s %d\t%s\n", marker, seed.ID, seed.Name)
		}
		return nil
	},
}

var gardenRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a garden and its seeds",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if flagGardenRmAll {
			if len(args) > 0 {
				return fmt.Errorf("rm: --all takes no id argument")
			}
			if err := a.gardens.DeleteAll(ctx); err != nil {
				return fmt.Errorf("delete all gardens: %w", err)
			}
			fmt.Println("deleted all gardens")
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("rm: id argument or --all required")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := a.gardens.DeleteByID(ctx, id); err != nil {
			return fmt.Errorf("delete garden: %w", err)
		}
		fmt.Println("deleted garden", id)
		return nil
	},
}

func init() {
	gardenAddCmd.Flags().StringVar(&flagGardenDescription, "description", "", "garden description")
	gardenRmCmd.Flags().BoolVar(&flagGardenRmAll, "all", false, "delete every garden")

	gardenCmd.AddCommand(gardenAddCmd)
	gardenCmd.AddCommand(gardenListCmd)
	gardenCmd.AddCommand(gardenShowCmd)
	gardenCmd.AddCommand(gardenRmCmd)
}

// parseID parses a positive decimal row id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
