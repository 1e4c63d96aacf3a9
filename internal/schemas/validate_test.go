package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEvaluation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		errPart string
	}{
		{
			name: "Valid full result",
			content: `{
				"category_scores": {
					"installation_guide": {"score": 12, "max_score": 15, "reason": "missing prerequisites"},
					"usage_examples": {"score": 15, "max_score": 15, "reason": "thorough"}
				},
				"total_score": 27,
				"max_score": 100,
				"grade": "Needs Improvement",
				"summary": "Sparse but usable.",
				"top_recommendations": ["Add examples"]
			}`,
			wantErr: false,
		},
		{
			name: "Bare number category scores",
			content: `{
				"category_scores": {"content_quality": 18},
				"summary": "ok"
			}`,
			wantErr: false,
		},
		{
			name:    "Missing summary",
			content: `{"category_scores": {"a": 1}, "total_score": 1}`,
			wantErr: true,
			errPart: "summary",
		},
		{
			name:    "Missing category scores",
			content: `{"total_score": 10, "summary": "x"}`,
			wantErr: true,
			errPart: "category_scores",
		},
		{
			name:    "Negative category score",
			content: `{"category_scores": {"a": -5}, "summary": "x"}`,
			wantErr: true,
		},
		{
			name:    "Score object without score field",
			content: `{"category_scores": {"a": {"reason": "no score"}}, "summary": "x"}`,
			wantErr: true,
		},
		{
			name:    "String category score",
			content: `{"category_scores": {"a": "high"}, "summary": "x"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEvaluation(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				if tt.errPart != "" {
					assert.Contains(t, err.Error(), tt.errPart)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateJSONStringBadSchema(t *testing.T) {
	err := ValidateJSONString(`{"type": nope}`, `{}`)
	require.Error(t, err)
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidationErrorMessage(t *testing.T) {
	ve := &ValidationError{Errors: []FieldError{
		{Field: "total_score", Message: "is required"},
	}}
	assert.Contains(t, ve.Error(), "1. total_score: is required")
}
