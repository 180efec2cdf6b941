// Package types defines the Greenhouse domain entities, composite views,
// configuration, and standard errors shared by the store, repository, and
// CLI layers.
package types

// Garden is a top-level bookmark collection. Every Seed belongs to exactly
// one Garden; deleting a Garden deletes its Seeds.
type Garden struct {
	ID          int64  // Surrogate key, generated on insert.
	Name        string // Human-readable name (required, non-blank).
	Description string // Free-text description; empty by default.
	SortOrder   int    // Display ordering; defaults to ID at creation.
}

// GardenUpdate carries optional field overrides for CopyWith. Nil fields
// keep the current value.
type GardenUpdate struct {
	Name        *string
	Description *string
	SortOrder   *int
}

// CopyWith returns a copy of the garden with the non-nil fields of u
// applied. The receiver is not modified; the ID never changes.
func (g Garden) CopyWith(u GardenUpdate) Garden {
	out := g
	if u.Name != nil {
		out.Name = *u.Name
	}
	if u.Description != nil {
		out.Description = *u.Description
	}
	if u.SortOrder != nil {
		out.SortOrder = *u.SortOrder
	}
	return out
}

// GardenWithSeeds is the composite read view of a garden joined with the
// seeds it owns, ordered by seed sort order.
type GardenWithSeeds struct {
	Garden
	Seeds []Seed
}
