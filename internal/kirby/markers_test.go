package kirby

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marked(body string) string {
	return MarkerStart + body + MarkerEnd
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name      string
		stdout    string
		want      any
		wantFound bool
		wantErr   bool
	}{
		{
			name:      "object with surrounding noise",
			stdout:    "Rendering...\n" + marked(`{"id":"home","status":200}`) + "\nDone\n",
			want:      map[string]any{"id": "home", "status": float64(200)},
			wantFound: true,
		},
		{
			name:      "whitespace around body",
			stdout:    MarkerStart + "\n  [1, 2]\n" + MarkerEnd,
			want:      []any{float64(1), float64(2)},
			wantFound: true,
		},
		{
			name:      "scalar payload",
			stdout:    marked(`"5.2.1"`),
			want:      "5.2.1",
			wantFound: true,
		},
		{
			name:      "null payload",
			stdout:    marked("null"),
			want:      nil,
			wantFound: true,
		},
		{
			name:   "no markers",
			stdout: `{"not":"marked"}`,
		},
		{
			name:   "start marker only",
			stdout: MarkerStart + `{"a":1}`,
		},
		{
			name:   "end marker before start",
			stdout: MarkerEnd + `{"a":1}` + MarkerStart,
		},
		{
			name:   "blank body",
			stdout: marked("  \n\t "),
		},
		{
			name:      "invalid json",
			stdout:    marked(`{"a":`),
			wantFound: true,
			wantErr:   true,
		},
		{
			name:      "only the first pair counts",
			stdout:    marked(`{"first":true}`) + marked(`{"second":true}`),
			want:      map[string]any{"first": true},
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found, err := ExtractJSON(tt.stdout)
			assert.Equal(t, tt.wantFound, found)

			if tt.wantErr {
				var perr *PayloadError
				require.True(t, errors.As(err, &perr), "expected *PayloadError, got %v", err)
				assert.Equal(t, `{"a":`, perr.Body)
				assert.NotNil(t, errors.Unwrap(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var payload struct {
		Version string `json:"version"`
		Roots   map[string]string
	}

	found, err := DecodeJSON("x"+marked(`{"version":"5.2.1","Roots":{"site":"/srv/site"}}`)+"y", &payload)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "5.2.1", payload.Version)
	assert.Equal(t, "/srv/site", payload.Roots["site"])

	found, err = DecodeJSON("no payload", &payload)
	assert.NoError(t, err)
	assert.False(t, found)

	found, err = DecodeJSON(marked(`[1,2]`), &payload)
	assert.True(t, found)
	assert.Error(t, err)
}
