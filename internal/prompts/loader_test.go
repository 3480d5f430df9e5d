package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKnownPrompts(t *testing.T) {
	keys := []string{
		"alignment-system", "alignment-user",
		"evaluation-system", "evaluation-user",
		"evaluation-batch-system", "evaluation-batch-user",
		"shortlist-system", "shortlist-user",
		"decision-system", "decision-user",
		"references-system", "references-user",
	}
	for _, key := range keys {
		prompt, err := Get("phases.json", key)
		require.NoError(t, err, key)
		assert.NotEmpty(t, prompt, key)
	}
}

func TestGetUnknownKey(t *testing.T) {
	_, err := Get("phases.json", "nope")
	assert.Error(t, err)
}

func TestGetUnknownFile(t *testing.T) {
	_, err := Get("missing.json", "alignment-system")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	out := Format("Evaluate {{.CandidateName}} for {{.RoleName}}.", map[string]string{
		"CandidateName": "Maria Silva",
		"RoleName":      "Engineering Manager",
	})
	assert.Equal(t, "Evaluate Maria Silva for Engineering Manager.", out)
}

func TestUserPromptsCarryPlaceholders(t *testing.T) {
	prompt := MustGet("phases.json", "evaluation-user")
	assert.True(t, strings.Contains(prompt, "{{.CandidateName}}"))
	assert.True(t, strings.Contains(prompt, "{{.Documents}}"))
}
