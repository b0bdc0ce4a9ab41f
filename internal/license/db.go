// Package license validates RPM License tag expressions against an approved
// license database.
package license

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// ErrNoDatabase is returned when the license database cannot be read
var ErrNoDatabase = errors.New("license database unavailable")

// Entry is one license known to the database
type Entry struct {
	// Name is the canonical license name and the database key
	Name string
	// FedoraAbbrev and SPDXAbbrev are the two short forms a License tag may use
	FedoraAbbrev string
	SPDXAbbrev   string
	Approved     bool
}

// hasAbbrev reports whether the entry carries any short form
func (e Entry) hasAbbrev() bool {
	return e.FedoraAbbrev != "" || e.SPDXAbbrev != ""
}

// matches reports whether s is exactly one of the entry's names
func (e Entry) matches(s string) bool {
	return s == e.Name || (e.FedoraAbbrev != "" && s == e.FedoraAbbrev) || (e.SPDXAbbrev != "" && s == e.SPDXAbbrev)
}

// DB is a read-only license database. Entries are kept in canonical-name order.
type DB struct {
	entries []Entry
}

// NewDB builds a database from entries
func NewDB(entries []Entry) *DB {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &DB{entries: sorted}
}

// Entries returns a copy of the database entries
func (db *DB) Entries() []Entry {
	out := make([]Entry, len(db.entries))
	copy(out, db.entries)
	return out
}

// Len returns the number of entries
func (db *DB) Len() int {
	return len(db.entries)
}

// rawEntry mirrors the JSON layout of a database record
type rawEntry struct {
	FedoraAbbrev string          `json:"fedora_abbrev"`
	SPDXAbbrev   string          `json:"spdx_abbrev"`
	Approved     json.RawMessage `json:"approved"`
}

// Load reads a JSON license database from path
func Load(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDatabase, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a JSON license database keyed by canonical license name
func Parse(r io.Reader) (*DB, error) {
	var raw map[string]rawEntry
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: failed to decode: %v", ErrNoDatabase, err)
	}

	entries := make([]Entry, 0, len(raw))
	for name, re := range raw {
		entries = append(entries, Entry{
			Name:         name,
			FedoraAbbrev: re.FedoraAbbrev,
			SPDXAbbrev:   re.SPDXAbbrev,
			Approved:     parseApproved(re.Approved),
		})
	}

	return NewDB(entries), nil
}

// parseApproved accepts "yes"/"no" strings as well as JSON booleans
func parseApproved(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.EqualFold(strings.TrimSpace(s), "yes")
	}

	return false
}
