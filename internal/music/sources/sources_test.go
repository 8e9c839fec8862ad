package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayable(t *testing.T) {
	var nilInfo *TrackInfo
	assert.False(t, nilInfo.Playable())
	assert.False(t, (&TrackInfo{URL: "https://x"}).Playable())
	assert.True(t, (&TrackInfo{StreamURL: "https://cdn/x"}).Playable())
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "Song", (&TrackInfo{Title: "Song", URL: "u"}).DisplayTitle())
	assert.Equal(t, "u", (&TrackInfo{URL: "u"}).DisplayTitle())
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://www.youtube.com/watch?v=abc"))
	assert.True(t, IsURL(" http://radio.example:8000/live "))
	assert.False(t, IsURL("never gonna give you up"))
	assert.False(t, IsURL("https://"))
}
