package music

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"

	"github.com/keshon/jukebox/internal/music/player"
)

func TestErrorText(t *testing.T) {
	assert.Equal(t, "Wrong instance to process operation", errorText(player.ErrNotConnected))
	assert.Equal(t, "You're not connected to a voice channel!", errorText(player.ErrNotInVoice))
	assert.Equal(t, "There are no songs in the queue!", errorText(player.ErrQueueEmpty))
	assert.Equal(t, "Error: boom", errorText(errors.New("boom")))
}

func TestReplies(t *testing.T) {
	assert.Equal(t, "Repeat mode is on!", repeatText(true))
	assert.Equal(t, "Repeat mode is off!", repeatText(false))

	assert.Equal(t, "I am not playing anything!", shuffleText(player.ShuffleEmpty))
	assert.Equal(t, "There are no tracks to shuffle!", shuffleText(player.ShuffleSingle))
	assert.Equal(t, "Shuffle completed successfully!", shuffleText(player.Shuffled))
}

func TestPlayOptions(t *testing.T) {
	input, now := playOptions([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "input", Type: discordgo.ApplicationCommandOptionString, Value: "  never gonna  "},
		{Name: "now", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
	})
	assert.Equal(t, "never gonna", input)
	assert.True(t, now)

	input, now = playOptions(nil)
	assert.Empty(t, input)
	assert.False(t, now)
}

func TestRequester(t *testing.T) {
	r := requester(&discordgo.Member{Nick: "DJ", User: &discordgo.User{ID: "1", Username: "alice"}})
	assert.Equal(t, "1", r.ID)
	assert.Equal(t, "DJ", r.Name)
	assert.NotEmpty(t, r.AvatarURL)

	assert.Equal(t, "Unknown author", requester(nil).Name)
}

func TestCommandsAreNamedAndGrouped(t *testing.T) {
	cmds := Commands(Deps{})
	seen := map[string]bool{}
	for _, c := range cmds {
		assert.False(t, seen[c.Name()], c.Name())
		seen[c.Name()] = true
		assert.Equal(t, group, c.Group())
	}
	assert.Len(t, cmds, 9)
}
