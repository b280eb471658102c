// Package person provides the person record store for Kin.
package person

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Partition is the on-disk shape of one lineage partition file: a single
// JSON object holding the lineage identity and its person records.
type Partition struct {
	Lineage     string            `json:"lineage"`
	LineageName string            `json:"lineageName"`
	People      []partitionPerson `json:"people"`
}

// partitionPerson mirrors the source format, where spouse slots are four
// flat fields rather than a list.
type partitionPerson struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	BirthDate     string `json:"birthDate"`
	DeathDate     string `json:"deathDate"`
	BirthLocation string `json:"birthLocation"`
	DeathLocation string `json:"deathLocation"`
	Father        string `json:"father"`
	Mother        string `json:"mother"`
	Spouse        string `json:"spouse"`
	Spouse2       string `json:"spouse2"`
	Spouse3       string `json:"spouse3"`
	Spouse4       string `json:"spouse4"`
	Lineage       string `json:"lineage"`
	LineageName   string `json:"lineageName"`
	Occupation    string `json:"occupation"`
}

// Store is a read-only collection of person records keyed by ID.
//
// Records are loaded once per graph build; the store is never mutated
// afterwards. Load order is preserved because it is the deterministic
// tie-break for ambiguous name resolution.
type Store struct {
	records []*Record
	byID    map[string]*Record
}

// NewStore creates a store over the given records, preserving their order.
// A record with a duplicate or empty ID is dropped; the first occurrence wins.
func NewStore(records []*Record) *Store {
	s := &Store{
		byID: make(map[string]*Record, len(records)),
	}
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if _, ok := s.byID[r.ID]; ok {
			continue
		}
		s.byID[r.ID] = r
		s.records = append(s.records, r)
	}
	return s
}

// LoadDir reads every lineage partition (*.json) under dir and returns a
// store over all records in deterministic order: files sorted by name,
// records in file order.
func LoadDir(dir string) (*Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".json") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no lineage partitions (*.json) found in %s", dir)
	}

	var records []*Record
	for _, name := range files {
		part, err := loadPartition(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading partition %s: %w", name, err)
		}
		records = append(records, part.Records()...)
	}

	return NewStore(records), nil
}

// loadPartition parses a single lineage partition file.
func loadPartition(path string) (*Partition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var part Partition
	if err := json.Unmarshal(data, &part); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return &part, nil
}

// Records converts the partition's raw person entries to Record values,
// collapsing the four spouse slots into an order-preserving list and
// inheriting the partition's lineage identity where a record omits it.
func (p *Partition) Records() []*Record {
	records := make([]*Record, 0, len(p.People))
	for _, raw := range p.People {
		rec := &Record{
			ID:            raw.ID,
			Name:          raw.Name,
			BirthDate:     raw.BirthDate,
			DeathDate:     raw.DeathDate,
			BirthLocation: raw.BirthLocation,
			DeathLocation: raw.DeathLocation,
			Father:        raw.Father,
			Mother:        raw.Mother,
			Lineage:       raw.Lineage,
			LineageName:   raw.LineageName,
			Occupation:    raw.Occupation,
		}
		if rec.Lineage == "" {
			rec.Lineage = p.Lineage
		}
		if rec.LineageName == "" {
			rec.LineageName = p.LineageName
		}
		for _, spouse := range []string{raw.Spouse, raw.Spouse2, raw.Spouse3, raw.Spouse4} {
			if strings.TrimSpace(spouse) != "" {
				rec.Spouses = append(rec.Spouses, spouse)
			}
		}
		records = append(records, rec)
	}
	return records
}

// Get returns the record with the given ID, or nil if it does not exist.
func (s *Store) Get(id string) *Record {
	return s.byID[id]
}

// All returns the records in load order. The returned slice is shared;
// callers must not modify it.
func (s *Store) All() []*Record {
	return s.records
}

// Len returns the number of records in the store.
func (s *Store) Len() int {
	return len(s.records)
}
