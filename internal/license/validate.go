package license

import (
	"strings"
	"unicode"
)

// Verdict explains the outcome of validating a License tag
type Verdict struct {
	Valid bool
	// Unbalanced is set when the parentheses do not pair up; no lookup is
	// attempted in that case.
	Unbalanced bool
	// WholeMatch is set when the entire tag is itself an approved name
	WholeMatch bool
	// Fragments are the license names the tag was split into
	Fragments []string
	// Unapproved lists the fragments that matched no approved entry
	Unapproved []string
}

// Balanced reports whether every ')' closes an earlier '(' and nothing is left open
func Balanced(tag string) bool {
	depth := 0
	for _, c := range tag {
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// Tokenize splits a License tag on parentheses and whitespace, dropping empty tokens
func Tokenize(tag string) []string {
	return strings.FieldsFunc(tag, func(r rune) bool {
		return r == '(' || r == ')' || unicode.IsSpace(r)
	})
}

// isBoolean reports whether tok is a boolean keyword. Negation is not part of
// the License grammar.
func isBoolean(tok string) bool {
	return strings.EqualFold(tok, "and") || strings.EqualFold(tok, "or")
}

// Fragments rebuilds license names from the tokens of tag. Short names may
// contain spaces, so consecutive tokens are joined until a boolean keyword or
// the end of the tag. Keywords are never fragments.
func Fragments(tag string) []string {
	var out []string
	var cur []string

	for _, tok := range Tokenize(tag) {
		if isBoolean(tok) {
			if len(cur) > 0 {
				out = append(out, strings.Join(cur, " "))
				cur = nil
			}
			continue
		}
		cur = append(cur, tok)
	}

	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}

	return out
}

// wholeMatch reports whether tag verbatim names an approved entry. Entries
// without any abbreviation are never matched, not even by canonical name.
func (db *DB) wholeMatch(tag string) bool {
	for _, e := range db.entries {
		if !e.hasAbbrev() || !e.Approved {
			continue
		}
		if e.matches(tag) {
			return true
		}
	}
	return false
}

// approved reports whether a single fragment names an approved entry.
// Entries without an abbreviation are placeholders in the database and are
// skipped, so their canonical name alone does not approve a fragment.
func (db *DB) approved(fragment string) bool {
	for _, e := range db.entries {
		if !e.hasAbbrev() || !e.Approved {
			continue
		}
		if e.matches(fragment) {
			return true
		}
	}
	return false
}

// Check validates tag and explains the result
func (db *DB) Check(tag string) Verdict {
	if !Balanced(tag) {
		return Verdict{Unbalanced: true}
	}

	if db.wholeMatch(tag) {
		return Verdict{Valid: true, WholeMatch: true, Fragments: []string{tag}}
	}

	v := Verdict{Fragments: Fragments(tag)}
	seen, valid := 0, 0
	for _, frag := range v.Fragments {
		seen++
		if db.approved(frag) {
			valid++
		} else {
			v.Unapproved = append(v.Unapproved, frag)
		}
	}

	// a tag made only of keywords names no license at all
	v.Valid = seen > 0 && seen == valid
	return v
}

// IsValid reports whether tag is a valid License expression
func (db *DB) IsValid(tag string) bool {
	return db.Check(tag).Valid
}
