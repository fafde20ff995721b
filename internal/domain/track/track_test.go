package track

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestTrack_Validate(t *testing.T) {
	tests := []struct {
		name    string
		track   Track
		wantErr bool
	}{
		{
			name:  "valid relative asset",
			track: Track{ID: "t1", Title: "Track 1", AssetPath: "track1.mp3"},
		},
		{
			name:  "valid remote asset",
			track: Track{ID: "t2", AssetPath: "https://cdn.example.com/t2.mp3"},
		},
		{
			name:    "missing id",
			track:   Track{AssetPath: "track1.mp3"},
			wantErr: true,
		},
		{
			name:    "blank asset path",
			track:   Track{ID: "t1", AssetPath: "  "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.track.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTrack))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTrack_IsRemote(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"track1.mp3", false},
		{"audio/track1.mp3", false},
		{"/audio/track1.mp3", false},
		{"http://localhost:8080/audio/track1.mp3", true},
		{"https://p.scdn.co/mp3-preview/abc", true},
		{"ftp://example.com/a.mp3", false},
		{"https://", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, Track{AssetPath: tt.path}.IsRemote())
		})
	}
}

func TestTrack_DisplayTitle(t *testing.T) {
	assert.Equal(t, "Morning", Track{Title: "Morning", AssetPath: "a.mp3"}.DisplayTitle())
	assert.Equal(t, "track3", Track{AssetPath: "audio/track3.wav"}.DisplayTitle())
}
