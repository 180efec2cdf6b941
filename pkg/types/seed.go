package types

import "time"

// Seed is a single bookmark entry. A seed owns zero or more links and zero
// or more tags; deleting a seed deletes both.
type Seed struct {
	ID         int64     // Surrogate key, generated on insert.
	Name       string    // Human-readable name (required, non-blank).
	GardenID   int64     // Owning garden (FK, cascade delete/update).
	IsFavorite bool      // Favorite flag; false by default.
	Notes      *string   // Optional free-text notes.
	ModifiedAt time.Time // Last modification time; creation time by default.
	SortOrder  int       // Display ordering; defaults to ID at creation.
}

// LinkEntry is one URI owned by a seed, with optional label and note.
// The URI is required but not validated at the storage layer.
type LinkEntry struct {
	ID        int64
	SeedID    int64
	URI       string
	Label     *string
	Note      *string
	SortOrder int
}

// Tag is a free-text label owned by a seed. Tags carry no display order.
type Tag struct {
	ID     int64
	SeedID int64
	Tag    string
}

// SeedWithDetails is the composite read view of a seed joined with its
// links (ordered by sort order) and tags.
type SeedWithDetails struct {
	Seed
	Links []LinkEntry
	Tags  []Tag
}
