package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTipOutput(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantOdds    string
		wantMissing []string
		wantReason  bool
	}{
		{
			name:     "plain object",
			raw:      validOutput,
			wantOdds: "1.85",
		},
		{
			name:     "fenced with language tag",
			raw:      "```json\n" + validOutput + "\n```",
			wantOdds: "1.85",
		},
		{
			name:     "fenced on one line with language tag",
			raw:      "```json" + validOutput + "```",
			wantOdds: "1.85",
		},
		{
			name:     "fenced with upper case tag and blank lines",
			raw:      "```JSON \n\n" + validOutput + "\n```\n",
			wantOdds: "1.85",
		},
		{
			name:     "fenced without language tag",
			raw:      "```" + validOutput + "```",
			wantOdds: "1.85",
		},
		{
			name:     "numeric odds",
			raw:      `{"league":"L","match":"A vs B","prediction":"1","odds":1.9,"reasoning":"r","memberMessage":"m","matchTime":"2026-10-18 20:00"}`,
			wantOdds: "1.9",
		},
		{
			name:        "missing and empty fields",
			raw:         `{"league":"L","match":"A vs B","prediction":"  ","odds":"2.0","reasoning":"r"}`,
			wantMissing: []string{"prediction", "memberMessage", "matchTime"},
		},
		{
			name:        "wrong field type",
			raw:         `{"league":"L","match":{"home":"A"},"prediction":"1","odds":"2.0","reasoning":"r","memberMessage":"m","matchTime":"t"}`,
			wantMissing: []string{"match"},
		},
		{
			name:       "not JSON",
			raw:        "Arsenal will win.",
			wantReason: true,
		},
		{
			name:       "JSON array",
			raw:        `[` + validOutput + `]`,
			wantReason: true,
		},
		{
			name:       "empty",
			raw:        "",
			wantReason: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ParseTipOutput(tt.raw)
			if tt.wantMissing == nil && !tt.wantReason {
				require.NoError(t, err)
				assert.Equal(t, tt.wantOdds, out.Odds)
				assert.NotEmpty(t, out.League)
				assert.NotEmpty(t, out.MatchTime)
				return
			}

			require.Error(t, err)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, ErrMalformedModelOutput))

			var malformed *MalformedModelOutputError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.raw, malformed.Raw)
			if tt.wantReason {
				assert.NotEmpty(t, malformed.Reason)
			} else {
				assert.Equal(t, tt.wantMissing, malformed.Missing)
				assert.Contains(t, err.Error(), "missing fields")
			}
		})
	}
}
