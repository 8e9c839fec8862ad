package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/jukebox/internal/core"
	"github.com/keshon/jukebox/internal/music/player"
	"github.com/keshon/jukebox/internal/music/sources"
	"github.com/keshon/jukebox/internal/music/stream"
)

// voiceConnector joins voice channels through the gateway session.
type voiceConnector struct {
	dg   *discordgo.Session
	open stream.Opener
}

func (c *voiceConnector) Connect(ctx context.Context, guildID, channelID string) (player.Conn, error) {
	type joined struct {
		vc  *discordgo.VoiceConnection
		err error
	}
	ch := make(chan joined, 1)
	go func() {
		vc, err := c.dg.ChannelVoiceJoin(guildID, channelID, false, true)
		ch <- joined{vc, err}
	}()

	select {
	case j := <-ch:
		if j.err != nil {
			return nil, fmt.Errorf("join voice channel: %w", j.err)
		}
		return newVoiceConn(c.dg.State, j.vc, c.open), nil
	case <-ctx.Done():
		go func() {
			if j := <-ch; j.err == nil {
				_ = j.vc.Disconnect()
			}
		}()
		return nil, ctx.Err()
	}
}

// voiceConn pairs a voice connection with the streamer feeding it.
type voiceConn struct {
	state    *discordgo.State
	vc       *discordgo.VoiceConnection
	streamer *stream.Streamer
}

func newVoiceConn(state *discordgo.State, vc *discordgo.VoiceConnection, open stream.Opener) *voiceConn {
	v := &voiceConn{state: state, vc: vc}
	v.streamer = stream.New(open, func(on bool) {
		if err := vc.Speaking(on); err != nil {
			log.Debug().Err(err).Str("guild_id", vc.GuildID).Msg("[Voice] speaking update failed")
		}
	})
	return v
}

func (v *voiceConn) Play(ctx context.Context, info *sources.TrackInfo) error {
	v.vc.RLock()
	out := v.vc.OpusSend
	v.vc.RUnlock()
	if out == nil {
		return player.ErrConnectionLost
	}
	return v.streamer.Play(ctx, out, info)
}

func (v *voiceConn) Pause()          { v.streamer.Pause() }
func (v *voiceConn) Resume()         { v.streamer.Resume() }
func (v *voiceConn) Stop()           { v.streamer.Stop() }
func (v *voiceConn) IsPlaying() bool { return v.streamer.IsPlaying() }
func (v *voiceConn) IsPaused() bool  { return v.streamer.IsPaused() }

func (v *voiceConn) Move(ctx context.Context, channelID string) error {
	errc := make(chan error, 1)
	go func() { errc <- v.vc.ChangeChannel(channelID, false, true) }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (v *voiceConn) IsConnected() bool {
	v.vc.RLock()
	defer v.vc.RUnlock()
	return v.vc.Ready
}

func (v *voiceConn) ChannelID() string {
	v.vc.RLock()
	defer v.vc.RUnlock()
	return v.vc.ChannelID
}

func (v *voiceConn) Members() int {
	channelID := v.ChannelID()
	if channelID == "" {
		return 0
	}
	guild, err := v.state.Guild(v.vc.GuildID)
	if err != nil {
		return 0
	}
	return countMembers(guild.VoiceStates, channelID)
}

func (v *voiceConn) Disconnect(ctx context.Context) error {
	v.streamer.Stop()
	errc := make(chan error, 1)
	go func() { errc <- v.vc.Disconnect() }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func countMembers(states []*discordgo.VoiceState, channelID string) int {
	n := 0
	for _, vs := range states {
		if vs != nil && vs.ChannelID == channelID {
			n++
		}
	}
	return n
}

// FindUserVoiceState finds the voice state of a user
func (b *Bot) FindUserVoiceState(guildID, userID string) (*core.VoiceState, error) {
	guild, err := b.dg.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving guild: %w", err)
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return &core.VoiceState{ChannelID: vs.ChannelID, UserID: vs.UserID}, nil
		}
	}
	return nil, player.ErrNotInVoice
}
