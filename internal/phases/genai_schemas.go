package phases

import "github.com/google/generative-ai-go/genai"

// Response schemas constraining the generation service per phase. These
// mirror the JSON Schemas in internal/schemas, which re-validate the payload
// on the way back in.

func stringSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeString}
}

func stringArraySchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: stringSchema()}
}

func alignmentSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"company_overview":  stringSchema(),
			"role_summary":      stringSchema(),
			"responsibilities":  stringArraySchema(),
			"hard_requirements": stringArraySchema(),
			"nice_to_haves":     stringArraySchema(),
			"search_keywords":   stringArraySchema(),
			"culture_notes":     stringSchema(),
		},
		Required: []string{"role_summary", "responsibilities", "hard_requirements"},
	}
}

func evaluationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"candidate_name":    stringSchema(),
			"summary":           stringSchema(),
			"strengths":         stringArraySchema(),
			"risks":             stringArraySchema(),
			"competency_notes":  stringSchema(),
			"leadership_notes":  stringSchema(),
			"personality_notes": stringSchema(),
			"recommendation":    stringSchema(),
		},
		Required: []string{"candidate_name", "summary"},
	}
}

func shortlistSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"entries": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"candidate_name": stringSchema(),
						"rank":           {Type: genai.TypeInteger},
						"rationale":      stringSchema(),
						"highlights":     stringArraySchema(),
						"concerns":       stringArraySchema(),
					},
					Required: []string{"candidate_name", "rationale"},
				},
			},
			"summary": stringSchema(),
		},
		Required: []string{"entries"},
	}
}

func decisionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"rows": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"candidate_name":      stringSchema(),
						"competency_summary":  stringSchema(),
						"leadership_summary":  stringSchema(),
						"personality_summary": stringSchema(),
						"verdict":             stringSchema(),
					},
					Required: []string{"candidate_name"},
				},
			},
			"recommendation": stringSchema(),
		},
		Required: []string{"rows", "recommendation"},
	}
}

func referencesSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"candidate_name": stringSchema(),
			"summary":        stringSchema(),
			"checks": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"referee_name":     stringSchema(),
						"relationship":     stringSchema(),
						"key_observations": stringArraySchema(),
					},
				},
			},
			"risks":   stringArraySchema(),
			"verdict": stringSchema(),
		},
		Required: []string{"candidate_name", "summary"},
	}
}
