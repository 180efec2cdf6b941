// Status command reports storage health and row counts.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		schemaVersion, err := a.store.Version(ctx)
		if err != nil {
			return fmt.Errorf("schema version: %w", err)
		}
		gardens, err := a.store.ListGardens(ctx)
		if err != nil {
			return fmt.Errorf("count gardens: %w", err)
		}
		seeds, err := a.store.ListSeeds(ctx, 0)
		if err != nil {
			return fmt.Errorf("count seeds: %w", err)
		}

		if flagJSON {
			out, err := json.MarshalIndent(map[string]any{
				"schema_version": schemaVersion,
				"gardens":        len(gardens),
				"seeds":          len(seeds),
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal status: %w", err)
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Println("schema version:", schemaVersion)
		fmt.Println("gardens:       ", len(gardens))
		fmt.Println("seeds:         ", len(seeds))
		return nil
	},
}
