package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{"bare number", "7", 7},
		{"decimal", "7.5", 7.5},
		{"trailing period", "8.", 8},
		{"wrapped in prose", "Score: 6 out of 10", 6},
		{"clamped high", "15", 10},
		{"clamped low", "-2", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScore(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseScore_NoNumber(t *testing.T) {
	_, err := parseScore("highly relevant")
	assert.Error(t, err)
}
