// Package person provides the person record model for Kin.
//
// It defines the immutable PersonRecord type loaded from lineage partition
// files and the read-only store that supplies records to the graph builder.
package person

// Record represents one person as loaded from a lineage partition.
//
// Relationship fields (Father, Mother, Spouses) are raw textual references
// of the form "Name [LineageName]" and may be empty; they are resolved to
// person IDs by the resolve package, never dereferenced directly.
type Record struct {
	// ID is the unique identifier for the person.
	ID string `json:"id"`

	// Name is the person's full name.
	Name string `json:"name"`

	// BirthDate is free text and may be empty or approximate ("abt 1882").
	BirthDate string `json:"birthDate"`

	// DeathDate is free text and may be empty or approximate.
	DeathDate string `json:"deathDate"`

	// BirthLocation is the place of birth, possibly empty.
	BirthLocation string `json:"birthLocation"`

	// DeathLocation is the place of death, possibly empty.
	DeathLocation string `json:"deathLocation"`

	// Father is a raw reference string ("Name [Lineage]"), possibly empty.
	Father string `json:"father"`

	// Mother is a raw reference string ("Name [Lineage]"), possibly empty.
	Mother string `json:"mother"`

	// Spouses holds the raw spouse reference strings in source order.
	// Remarriage is common in the source data; up to four slots appear.
	Spouses []string `json:"spouses,omitempty"`

	// Lineage is the ID of the lineage partition this person belongs to.
	Lineage string `json:"lineage"`

	// LineageName is the display name of the lineage, used as the
	// disambiguation key in reference strings.
	LineageName string `json:"lineageName"`

	// Occupation is free text, possibly empty.
	Occupation string `json:"occupation"`
}
