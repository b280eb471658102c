// Package resolve turns textual relationship references into person IDs.
//
// The source data encodes relationships as free-text strings of the form
// "Walter Arnold Hagborg [Hagborg-Hansson]" rather than foreign keys. The
// resolver indexes every record by (normalized name, lineage name) and looks
// references up against that index. Blank references are expected and
// resolve silently to nothing; ambiguous matches pick the first record in
// load order and emit a diagnostic so build tooling can report the data
// quality issue without aborting the build.
package resolve

import (
	"strings"

	"github.com/hagborg/kin-go/internal/person"
)

// DiagnosticKind classifies a data-quality issue found during resolution.
type DiagnosticKind string

const (
	// DiagUnresolved means a non-empty reference matched no indexed person.
	DiagUnresolved DiagnosticKind = "unresolved"

	// DiagAmbiguous means a reference matched more than one person; the
	// first match in load order was used.
	DiagAmbiguous DiagnosticKind = "ambiguous"
)

// Diagnostic records one data-quality issue. Diagnostics are accumulated,
// never raised as errors.
type Diagnostic struct {
	// Kind is the issue category.
	Kind DiagnosticKind `json:"kind"`

	// Reference is the raw reference string that triggered the issue.
	Reference string `json:"reference"`

	// PersonID is the ID of the record whose field held the reference.
	PersonID string `json:"personId"`

	// Field names the referencing field ("father", "mother", "spouse").
	Field string `json:"field"`

	// Candidates holds the matching person IDs for ambiguous references.
	Candidates []string `json:"candidates,omitempty"`
}

// Resolver maps "Name [LineageName]" reference strings to person IDs.
type Resolver struct {
	// index maps normalized "name|lineage" keys to person IDs in load order.
	index map[string][]string
}

// NewResolver builds a resolver index over the store's records. Records are
// indexed in load order so ambiguity resolution is deterministic for a
// fixed input list.
func NewResolver(store *person.Store) *Resolver {
	r := &Resolver{
		index: make(map[string][]string, store.Len()),
	}
	for _, rec := range store.All() {
		key := indexKey(rec.Name, rec.LineageName)
		r.index[key] = append(r.index[key], rec.ID)
	}
	return r
}

// Resolve looks up a raw reference string and returns the matched person ID.
//
// An empty or whitespace-only reference returns ok=false with no diagnostic;
// blank relationship fields are common in the source data. A reference that
// matches nothing returns ok=false with an unresolved diagnostic. A
// reference that matches several people returns the first match in load
// order plus an ambiguous diagnostic.
func (r *Resolver) Resolve(reference string) (id string, diag *Diagnostic, ok bool) {
	name, lineage, parsed := ParseReference(reference)
	if !parsed {
		return "", nil, false
	}

	matches := r.index[indexKey(name, lineage)]
	switch len(matches) {
	case 0:
		return "", &Diagnostic{Kind: DiagUnresolved, Reference: reference}, false
	case 1:
		return matches[0], nil, true
	default:
		return matches[0], &Diagnostic{
			Kind:       DiagAmbiguous,
			Reference:  reference,
			Candidates: append([]string(nil), matches...),
		}, true
	}
}

// ParseReference splits a "Name [LineageName]" reference into its parts.
// It returns ok=false for blank input. A reference without a bracketed
// lineage tag is parsed as a bare name with an empty lineage.
func ParseReference(reference string) (name, lineage string, ok bool) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return "", "", false
	}

	open := strings.LastIndex(reference, "[")
	end := strings.LastIndex(reference, "]")
	if open >= 0 && end > open {
		name = strings.TrimSpace(reference[:open])
		lineage = strings.TrimSpace(reference[open+1 : end])
	} else {
		name = reference
	}

	if name == "" && lineage == "" {
		return "", "", false
	}
	return name, lineage, true
}

// NormalizeName canonicalizes a person name for index lookups:
// case-insensitive, punctuation variance trimmed, whitespace collapsed.
func NormalizeName(name string) string {
	lower := strings.ToLower(name)
	var b strings.Builder
	b.Grow(len(lower))
	lastSpace := true
	for _, r := range lower {
		switch {
		case r == '.' || r == ',' || r == '\'' || r == '"' || r == '(' || r == ')':
			// Punctuation variance between references and records.
		case r == ' ' || r == '\t' || r == '-' || r == '_':
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimSpace(b.String())
}

func indexKey(name, lineage string) string {
	return NormalizeName(name) + "|" + NormalizeName(lineage)
}
