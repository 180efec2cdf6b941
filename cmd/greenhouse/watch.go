// Watch commands stream live collection snapshots until interrupted.
package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var gardenWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream garden snapshots as they change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		for res := range a.gardens.WatchAll(ctx) {
			gardens, ok := res.Value()
			if !ok {
				fmt.Println("snapshot failed:", res.Err())
				continue
			}
			fmt.Printf("-- %d gardens --\n", len(gardens))
			for _, g := range gardens {
				fmt.Printf("%d\t%s\n", g.ID, g.Name)
			}
		}
		return nil
	},
}

var seedWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream seed snapshots as they change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		for res := range a.seeds.WatchAll(ctx) {
			seeds, ok := res.Value()
			if !ok {
				fmt.Println("snapshot failed:", res.Err())
				continue
			}
			fmt.Printf("-- %d seeds --\n", len(seeds))
			for _, seed := range seeds {
				fmt.Printf("%d\t%s\n", seed.ID, seed.Name)
			}
		}
		return nil
	},
}

func init() {
	gardenCmd.AddCommand(gardenWatchCmd)
	seedCmd.AddCommand(seedWatchCmd)
}
