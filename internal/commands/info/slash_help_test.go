package info

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keshon/jukebox/internal/core"
)

type cmd struct{ name, category string }

func (c cmd) Name() string              { return c.name }
func (c cmd) Description() string       { return c.name + " things" }
func (c cmd) Aliases() []string         { return nil }
func (c cmd) Group() string             { return "" }
func (c cmd) Category() string          { return c.category }
func (c cmd) Run(ctx interface{}) error { return nil }

func TestHelpByCategory(t *testing.T) {
	all := []core.Command{
		cmd{"music-play", "🎵 Music"},
		cmd{"help", "🕯️ Information"},
		cmd{"music-stop", "🎵 Music"},
	}
	out := helpByCategory(all)
	assert.Equal(t, "**🎵 Music**\n`/music-play` - music-play things\n`/music-stop` - music-stop things\n\n**🕯️ Information**\n`/help` - help things\n", out)
}

func TestHelpFlat(t *testing.T) {
	r := core.NewRegistry()
	r.Register(cmd{"b", "x"})
	r.Register(cmd{"a", "y"})
	assert.Equal(t, "`/a` - a things\n`/b` - b things\n", helpFlat(r.All()))
}
