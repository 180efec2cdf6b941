// Garden set command updates selected fields of a garden.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seedfolk/greenhouse/pkg/types"
)

var (
	flagSetName        string
	flagSetDescription string
	flagSetSortOrder   int
)

var gardenSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Update garden fields",
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

		current, err := a.gardens.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("set garden: %w", err)
		}

		// Only flags the caller passed become overrides.
		var update types.GardenUpdate
		if cmd.Flags().Changed("name") {
			update.Name = &flagSetName
		}
		if cmd.Flags().Changed("description") {
			update.Description = &flagSetDescription
		}
		if cmd.Flags().Changed("sort-order") {
			update.SortOrder = &flagSetSortOrder
		}

		if err := a.gardens.Update(ctx, current.CopyWith(update)); err != nil {
			return fmt.Errorf("set garden: %w", err)
		}
		fmt.Println("updated garden", id)
		return nil
	},
}

func init() {
	gardenSetCmd.Flags().StringVar(&flagSetName, "name", "", "new name")
	gardenSetCmd.Flags().StringVar(&flagSetDescription, "description", "", "new description")
	gardenSetCmd.Flags().IntVar(&flagSetSortOrder, "sort-order", 0, "new display order")

	gardenCmd.AddCommand(gardenSetCmd)
}
