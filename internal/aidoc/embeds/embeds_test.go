package embeds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeYouTubeURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "watch url",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:  "short link",
			input: "https://youtu.be/dQw4w9WgXcQ",
			want:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		},
		{
			name:  "shorts",
			input: "https://youtube.com/shorts/abc123",
			want:  "https://www.youtube.com/watch?v=abc123",
		},
		{
			name:  "embed path",
			input: "https://www.youtube.com/embed/abc123",
			want:  "https://www.youtube.com/watch?v=abc123",
		},
		{
			name:    "other host",
			input:   "https://vimeo.com/12345",
			wantErr: true,
		},
		{
			name:    "watch without id",
			input:   "https://www.youtube.com/watch",
			wantErr: true,
		},
		{
			name:    "not a url",
			input:   "::::",
			wantErr: true,
		},
		{
			name:    "javascript scheme",
			input:   "javascript:alert(1)",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeYouTubeURL(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedLink)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
