package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePhaseAccepts(t *testing.T) {
	err := ValidatePhase(Alignment, `{
		"role_summary": "EM for payments",
		"responsibilities": ["lead"],
		"hard_requirements": ["go"]
	}`)
	assert.NoError(t, err)
}

func TestValidatePhaseRejectsMissingFields(t *testing.T) {
	err := ValidatePhase(Evaluation, `{"summary": "no name"}`)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.NotEmpty(t, ve.Errors)
	assert.Contains(t, ve.Error(), "candidate_name")
}

func TestValidatePhaseRejectsEmptyRequiredString(t *testing.T) {
	err := ValidatePhase(References, `{"candidate_name": "", "summary": "ok"}`)
	assert.Error(t, err)
}

func TestValidatePhaseRejectsEmptyShortlist(t *testing.T) {
	err := ValidatePhase(Shortlist, `{"entries": []}`)
	assert.Error(t, err)
}

func TestValidatePhaseUnknownSchema(t *testing.T) {
	err := ValidatePhase("bogus", `{}`)
	assert.Error(t, err)
}

func TestValidatePhaseMalformedJSON(t *testing.T) {
	err := ValidatePhase(Decision, `{not json`)
	assert.Error(t, err)
}
