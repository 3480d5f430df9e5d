// Package matching classifies uploaded filenames into document types and
// associates them with known candidates. It is pure string work: no I/O, no
// errors. Absence of a match is a valid outcome meaning "needs manual
// handling".
package matching

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DocType tags a file with the assessment slot it belongs to.
type DocType string

// Document types recognized by the classifier
const (
	DocPersonality DocType = "personality"
	DocCompetency  DocType = "competency"
	DocLeadership  DocType = "leadership"
)

// keywordSets maps each document type to the tokens that identify it in a
// filename. First matching set wins, in this order.
var keywordSets = []struct {
	docType  DocType
	keywords []string
}{
	{DocPersonality, []string{"personality", "lens", "disc", "perfil", "comportamental"}},
	{DocCompetency, []string{"competency", "competencia", "skills", "technical", "tecnica"}},
	{DocLeadership, []string{"leadership", "lideranca", "management", "gestao"}},
}

// Normalize lowercases a filename, strips diacritics, replaces common
// separators with spaces and collapses runs of whitespace.
func Normalize(name string) string {
	name = strings.ToLower(name)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, name); err == nil {
		name = folded
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == '-' || r == '_' || r == '.' || r == '(' || r == ')':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Classify infers the document type of a filename from its keywords.
// The second return value is false when no keyword set matches, meaning the
// file cannot be auto-assigned and the caller must fall back to manual
// assignment.
func Classify(filename string) (DocType, bool) {
	normalized := Normalize(filename)
	for _, set := range keywordSets {
		for _, kw := range set.keywords {
			if strings.Contains(normalized, kw) {
				return set.docType, true
			}
		}
	}
	return "", false
}

// Result pairs the matched candidate with the classified document type.
type Result struct {
	Candidate string
	Type      DocType
}

// Match associates a filename with the most likely candidate from the given
// roster and classifies its document type. The candidate whose name parts
// (length > 2, filtering connective words) overlap the filename the most
// wins; ties resolve to the earliest roster entry. Returns false when the
// document type cannot be classified or no candidate overlaps at all.
func Match(filename string, candidates []string) (Result, bool) {
	docType, ok := Classify(filename)
	if !ok {
		return Result{}, false
	}

	normalized := Normalize(filename)

	best := ""
	bestCount := 0
	for _, candidate := range candidates {
		count := 0
		for _, part := range nameParts(candidate) {
			if strings.Contains(normalized, part) {
				count++
			}
		}
		if count > bestCount {
			best = candidate
			bestCount = count
		}
	}

	if bestCount == 0 {
		return Result{}, false
	}
	return Result{Candidate: best, Type: docType}, true
}

// nameParts splits a candidate name into normalized parts longer than two
// runes, which filters connective words like "de" or "da".
func nameParts(name string) []string {
	var parts []string
	for _, p := range strings.Fields(Normalize(name)) {
		if len([]rune(p)) > 2 {
			parts = append(parts, p)
		}
	}
	return parts
}

// stem strips the file extension from a filename.
func stem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
