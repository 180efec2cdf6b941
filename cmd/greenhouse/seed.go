// Seed commands: add, list, show, rm, favorite.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seedfolk/greenhouse/pkg/types"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Manage seeds (bookmarks)",
}

var (
	flagSeedGarden   int64
	flagSeedNotes    string
	flagSeedFavorite bool
	flagSeedLinks    []string
	flagSeedTags     []string
	flagSeedRmAll    bool
	flagSeedUnset    bool
)

var seedAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a seed in a garden",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		seed := types.Seed{
			Name:       args[0],
			GardenID:   flagSeedGarden,
			IsFavorite: flagSeedFavorite,
		}
		if flagSeedNotes != "" {
			seed.Notes = &flagSeedNotes
		}

		links := make([]types.LinkEntry, 0, len(flagSeedLinks))
		for _, uri := range flagSeedLinks {
			links = append(links, types.LinkEntry{URI: uri})
		}
		tags := make([]types.Tag, 0, len(flagSeedTags))
		for _, tag := range flagSeedTags {
			tags = append(tags, types.Tag{Tag: tag})
		}

		id, err := a.seeds.Insert(ctx, seed, links, tags)
		if err != nil {
			return fmt.Errorf("add seed: %w", err)
		}

		fmt.Println("created seed", id)
		return nil
	},
}

var seedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List seeds, optionally for one garden",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		seeds, err := a.store.ListSeeds(ctx, flagSeedGarden)
		if err != nil {
			return fmt.Errorf("list seeds: %w", err)
		}

		if flagJSON {
			return printJSON(seeds)
		}
		for _, seed := range seeds {
			marker := " "
			if seed.IsFavorite {
				marker = "*"
			}
			fmt.Printf("%s %d\t%s\t(garden %d)\n", marker, seed.ID, seed.Name, seed.GardenID)
		}
		return nil
	},
}

var seedShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a seed with its links and tags",
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

		view, err := a.seeds.GetWithDetails(ctx, id)
		if err != nil {
			return fmt.Errorf("show seed: %w", err)
		}

		if flagJSON {
			return printJSON(view)
		}
		fmt.Printf("%d\t%s\t(garden %d)\n", view.ID, view.Name, view.GardenID)
		if view.IsFavorite {
			fmt.Println("  favorite")
		}
		if view.Notes != nil {
			fmt.Println("  notes:", *view.Notes)
		}
		fmt.Println("  modified:", view.ModifiedAt.Format("2006-01-02 15:04:05"))
		for _, link := range view.Links {
			line := "  link: " + link.URI
			if link.Label != nil {
				line += " (" + *link.Label + ")"
			}
			fmt.Println(line)
		}
		for _, tag := range view.Tags {
			fmt.Println("  tag:", tag.Tag)
		}
		return nil
	},
}

var seedRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a seed",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		if flagSeedRmAll {
			if len(args) > 0 {
				return fmt.Errorf("rm: --all takes no id argument")
			}
			if err := a.seeds.DeleteAll(ctx); err != nil {
				return fmt.Errorf("delete all seeds: %w", err)
			}
			fmt.Println("deleted all seeds")
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("rm: id argument or --all required")
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := a.seeds.DeleteByID(ctx, id); err != nil {
			return fmt.Errorf("delete seed: %w", err)
		}
		fmt.Println("deleted seed", id)
		return nil
	},
}

var seedFavoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Mark a seed as favorite (or clear with --unset)",
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

		seed, err := a.seeds.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("favorite seed: %w", err)
		}
		seed.IsFavorite = !flagSeedUnset
		if err := a.seeds.Update(ctx, seed); err != nil {
			return fmt.Errorf("favorite seed: %w", err)
		}

		if flagSeedUnset {
			fmt.Println("cleared favorite on seed", id)
		} else {
			fmt.Println("marked seed", id, "as favorite")
		}
		return nil
	},
}

func init() {
	seedAddCmd.Flags().Int64Var(&flagSeedGarden, "garden", 0, "owning garden id (required)")
	seedAddCmd.Flags().StringVar(&flagSeedNotes, "notes", "", "free-text notes")
	seedAddCmd.Flags().BoolVar(&flagSeedFavorite, "favorite", false, "mark as favorite")
	seedAddCmd.Flags().StringArrayVar(&flagSeedLinks, "link", nil, "link URI (repeatable)")
	seedAddCmd.Flags().StringArrayVar(&flagSeedTags, "tag", nil, "tag (repeatable)")
	seedAddCmd.MarkFlagRequired("garden")

	seedListCmd.Flags().Int64Var(&flagSeedGarden, "garden", 0, "restrict to one garden")
	seedRmCmd.Flags().BoolVar(&flagSeedRmAll, "all", false, "delete every seed")
	seedFavoriteCmd.Flags().BoolVar(&flagSeedUnset, "unset", false, "clear the favorite flag")

	seedCmd.AddCommand(seedAddCmd)
	seedCmd.AddCommand(seedListCmd)
	seedCmd.AddCommand(seedShowCmd)
	seedCmd.AddCommand(seedRmCmd)
	seedCmd.AddCommand(seedFavoriteCmd)
}
