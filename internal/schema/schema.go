// Package schema is the canonical registry of Greenhouse table and column
// names and the timestamp sentinel values. It is pure data: every layer
// that touches the database (migrations, store, tests) names tables and
// columns through this package.
//
// Column naming is uneven on purpose: gardenId and isFavorite are camel
// case while seed_id and sort_order are snake case. The layout is inherited
// from the legacy database and renaming columns is not worth a migration.
package schema

// Table names, final (version 3) layout.
const (
	TableGarden    = "garden"
	TableSeed      = "seed"
	TableLinkEntry = "link_entry"
	TableLinkTag   = "link_tag"
)

// Transient table names used only inside the v1 to v2 migration step.
const (
	TableSeedHolding = "seed_tmp"
	TableSeedNext    = "seed_new"
)

// Columns shared across tables.
const (
	ColID        = "id"
	ColName      = "name"
	ColSortOrder = "sort_order"
)

// Garden columns.
const (
	ColDescription = "description"
)

// Seed columns.
const (
	ColGardenID   = "gardenId"
	ColIsFavorite = "isFavorite"
	ColNotes      = "notes"
	ColDateTime   = "date_time"
)

// Link entry and tag columns.
const (
	ColSeedID = "seed_id"
	ColURI    = "uri"
	ColLabel  = "label"
	ColNote   = "note"
	ColTag    = "tag"
)

// Legacy (version 1) seed columns dropped by the v1 to v2 migration.
const (
	LegacyColCollection = "collection"
	LegacyColLinks      = "links"
	LegacyColTags       = "tags"
)

// TimeLayout is the stored timestamp encoding: ISO-8601-like local
// date-time text with no timezone offset.
const TimeLayout = "2006-01-02T15:04:05"

// EpochTimestamp is the sentinel written for seeds whose legacy date_time
// was null. Migration must not substitute the current time.
const EpochTimestamp = "1970-01-01T00:00:00"
