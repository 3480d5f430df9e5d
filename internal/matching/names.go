package matching

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// defaultStopTokens are filename tokens that describe the document rather
// than the person and are removed during provisional name extraction.
var defaultStopTokens = []string{
	"cv", "resume", "curriculo", "curriculum", "vitae",
	"interview", "entrevista", "transcript", "transcricao",
	"notes", "report", "relatorio", "assessment", "avaliacao",
	"final", "draft", "copy", "doc", "file",
}

// NameExtractor derives a provisional candidate name from a raw filename,
// used for batch grouping before any candidate roster exists.
type NameExtractor struct {
	stop  map[string]struct{}
	title cases.Caser
}

// NewNameExtractor builds an extractor with the default stop-token list plus
// any extra tokens the caller wants filtered.
func NewNameExtractor(extraTokens ...string) *NameExtractor {
	stop := make(map[string]struct{}, len(defaultStopTokens)+len(extraTokens))
	for _, t := range defaultStopTokens {
		stop[t] = struct{}{}
	}
	for _, t := range extraTokens {
		stop[Normalize(t)] = struct{}{}
	}
	return &NameExtractor{
		stop:  stop,
		title: cases.Title(language.Und),
	}
}

// Extract produces a provisional candidate name from a filename: the stem is
// normalized, stop tokens and bare numbers are removed and the remaining
// words are title-cased. Returns "" when nothing name-like remains.
func (e *NameExtractor) Extract(filename string) string {
	var words []string
	for _, w := range strings.Fields(Normalize(stem(filename))) {
		if _, skip := e.stop[w]; skip {
			continue
		}
		if isNumeric(w) {
			continue
		}
		words = append(words, e.title.String(w))
	}
	return strings.Join(words, " ")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
