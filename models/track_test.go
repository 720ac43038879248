package models

import (
	"testing"

	"sound-garage/lookups"

	"github.com/stretchr/testify/assert"
)

func TestTrackValidate(t *testing.T) {
	var m TrackModel

	track, err := m.Validate(Track{Title: "  Night Drive  "})
	assert.NoError(t, err)
	assert.Equal(t, "Night Drive", track.Title)

	// quality defaults when the client sends none
	assert.Equal(t, int32(lookups.AudioQuality320k), track.QualityCode)
}

func TestTrackValidateRejectsEmptyTitle(t *testing.T) {
	var m TrackModel

	_, err := m.Validate(Track{Title: "   "})
	assert.Equal(t, ErrTrackTitleMissing, err)
}

func TestPlaylistValidate(t *testing.T) {
	var m PlaylistModel

	_, err := m.Validate(Playlist{Name: ""})
	assert.Equal(t, ErrPlaylistNameMissing, err)

	playlist, err := m.Validate(Playlist{Name: " Late Night "})
	assert.NoError(t, err)
	assert.Equal(t, "Late Night", playlist.Name)
}

func TestArtistValidate(t *testing.T) {
	var m ArtistModel

	_, err := m.Validate(Artist{Name: " "})
	assert.Equal(t, ErrArtistNameMissing, err)
}
