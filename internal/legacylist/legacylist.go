// Package legacylist decodes the string-encoded lists carried by the
// pre-normalization seed schema. The legacy links and tags columns held a
// JSON array of strings; this package exists only for the v1 to v2 schema
// migration and is not part of the final data layout.
package legacylist

import "encoding/json"

// Decode parses a legacy JSON-array-of-strings blob into its ordered
// elements. An empty blob decodes to no elements. A blob that fails to
// parse, parses to a null list, or parses to the wrong shape also decodes
// to no elements: corrupt legacy data must never block a migration.
//
// Elements pass through unchanged. The encoding is structured, so embedded
// commas and whitespace are not delimiters; no trimming or deduplication
// is applied.
func Decode(blob string) []string {
	if blob == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		return nil
	}
	return items
}
