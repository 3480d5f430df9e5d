package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Lowercases and splits separators", "Maria-Silva_CV.pdf", "maria silva cv pdf"},
		{"Strips diacritics", "João-Costa-Liderança.pdf", "joao costa lideranca pdf"},
		{"Collapses whitespace", "  ana    souza  ", "ana souza"},
		{"Empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     DocType
		wantOK   bool
	}{
		{"Personality keyword", "maria-silva-lens-report.pdf", DocPersonality, true},
		{"Personality in Portuguese", "perfil_joao.pdf", DocPersonality, true},
		{"Competency keyword", "ana_souza_skills_assessment.docx", DocCompetency, true},
		{"Leadership keyword", "pedro-management-review.pdf", DocLeadership, true},
		{"Leadership with diacritics", "liderança-joão.pdf", DocLeadership, true},
		{"No recognized keyword", "maria-silva-notes.pdf", "", false},
		{"Plain CV is not an assessment doc", "joao-costa-cv.pdf", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Classify(tt.filename)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch(t *testing.T) {
	roster := []string{"Maria Silva", "Maria Santos", "Joao Costa"}

	t.Run("Matches candidate and type together", func(t *testing.T) {
		got, ok := Match("maria-silva-lens.pdf", roster)
		require.True(t, ok)
		assert.Equal(t, "Maria Silva", got.Candidate)
		assert.Equal(t, DocPersonality, got.Type)
	})

	t.Run("Higher overlap wins over shared token", func(t *testing.T) {
		// Both Marias share the first token; the second token decides.
		got, ok := Match("maria_santos_skills.pdf", roster)
		require.True(t, ok)
		assert.Equal(t, "Maria Santos", got.Candidate)
		assert.Equal(t, DocCompetency, got.Type)
	})

	t.Run("Tie resolves to first roster entry", func(t *testing.T) {
		got, ok := Match("maria-leadership.pdf", roster)
		require.True(t, ok)
		assert.Equal(t, "Maria Silva", got.Candidate)
	})

	t.Run("No keyword means no match regardless of roster", func(t *testing.T) {
		_, ok := Match("maria-silva.pdf", roster)
		assert.False(t, ok)
	})

	t.Run("Zero overlap means no match", func(t *testing.T) {
		_, ok := Match("carla-mendes-leadership.pdf", roster)
		assert.False(t, ok)
	})

	t.Run("Empty roster", func(t *testing.T) {
		_, ok := Match("maria-silva-lens.pdf", nil)
		assert.False(t, ok)
	})
}

func TestNameParts(t *testing.T) {
	// Connective words of length <= 2 are filtered out.
	assert.Equal(t, []string{"maria", "silva"}, nameParts("Maria de Silva"))
	assert.Empty(t, nameParts("de da"))
}

func TestNameExtractor(t *testing.T) {
	e := NewNameExtractor()

	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{"CV file", "maria-silva-cv.pdf", "Maria Silva"},
		{"Transcript file", "maria_silva_transcricao.pdf", "Maria Silva"},
		{"Second candidate", "joao-costa-cv.pdf", "Joao Costa"},
		{"Strips version numbers", "ana souza cv 2.pdf", "Ana Souza"},
		{"Diacritics folded", "João-Costa-entrevista.pdf", "Joao Costa"},
		{"Only stop tokens", "cv-final.pdf", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.Extract(tt.filename))
		})
	}
}

func TestNameExtractorExtraTokens(t *testing.T) {
	e := NewNameExtractor("screening")
	assert.Equal(t, "Pedro Alves", e.Extract("pedro-alves-screening.pdf"))
}

func TestNameExtractorGroupsSameName(t *testing.T) {
	// The grouping scenario from batch ingestion: same person, different
	// document naming conventions, identical provisional name.
	e := NewNameExtractor()
	a := e.Extract("maria-silva-cv.pdf")
	b := e.Extract("maria_silva_transcricao.pdf")
	assert.Equal(t, a, b)
	assert.Equal(t, "Maria Silva", a)
}
