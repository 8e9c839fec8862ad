// Package embed renders player state as Discord embeds.
package embed

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/jukebox/internal/music/player"
	"github.com/keshon/jukebox/internal/music/sources"
	"github.com/keshon/jukebox/internal/storage"
	"github.com/keshon/jukebox/pkg/util"
)

const Color = 0xb01e66

const historyDateTpl = "DD.MM hh:mm"

// Builder implements player.Embedder.
type Builder struct{}

func New() *Builder { return &Builder{} }

// Track renders a track card: title link, duration, uploader and requester.
func (b *Builder) Track(requester player.Requester, info *sources.TrackInfo, title string) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: title,
		Color: Color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Duration", Value: Duration(info), Inline: true},
		},
	}
	if info == nil {
		e.Description = "Unknown track"
		return e
	}

	e.Description = link(info)
	if info.Uploader != "" {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Uploader", Value: info.Uploader, Inline: true})
	}
	if info.SourceName != "" {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Source", Value: info.SourceName, Inline: true})
	}
	if info.Thumbnail != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: info.Thumbnail}
	}
	if requester.Name != "" {
		e.Footer = &discordgo.MessageEmbedFooter{
			Text:    "Requested by " + requester.Name,
			IconURL: requester.AvatarURL,
		}
	}
	return e
}

// Queue lists upcoming tracks. Unresolved entries show as "Loading...".
func (b *Builder) Queue(view player.QueueView) *discordgo.MessageEmbed {
	var sb strings.Builder
	for i, t := range view.Tracks {
		info, ready := t.Info.Peek()
		switch {
		case !ready:
			fmt.Fprintf(&sb, "%d) Loading...\n", i+1)
		case info == nil:
			fmt.Fprintf(&sb, "%d) ~~Unavailable~~\n", i+1)
		default:
			fmt.Fprintf(&sb, "%d) %s, duration: %s\n", i+1, link(info), Duration(info))
		}
	}
	if more := view.Total - len(view.Tracks); more > 0 {
		fmt.Fprintf(&sb, "...and %d more", more)
	}

	return &discordgo.MessageEmbed{
		Title:       "Queue",
		Description: strings.TrimRight(sb.String(), "\n"),
		Color:       Color,
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Repeat: %s · Paused: %s", onOff(view.Repeat), onOff(view.Paused))},
	}
}

// History lists recently played tracks, newest first.
func (b *Builder) History(records []storage.TrackRecord) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{Title: "Recently played", Color: Color}
	if len(records) == 0 {
		e.Description = "Nothing has been played yet."
		return e
	}

	var sb strings.Builder
	for i, r := range records {
		info := &sources.TrackInfo{Title: r.Title, URL: r.URL, Duration: r.Duration, IsLive: r.IsLive}
		fmt.Fprintf(&sb, "%d) %s, %s", i+1, link(info), Duration(info))
		if when := util.FormatDateTpl(r.PlayedAt, historyDateTpl); when != "" {
			fmt.Fprintf(&sb, " · %s", when)
		}
		if r.RequestedBy != "" {
			fmt.Fprintf(&sb, " · %s", r.RequestedBy)
		}
		sb.WriteByte('\n')
	}
	e.Description = strings.TrimRight(sb.String(), "\n")
	return e
}

// Duration is "Live" for streams and m:ss otherwise.
func Duration(info *sources.TrackInfo) string {
	if info == nil {
		return "Unknown"
	}
	if info.IsLive {
		return "Live"
	}
	return util.FormatDuration(info.Duration)
}

func link(info *sources.TrackInfo) string {
	title := escape(info.DisplayTitle())
	if info.URL == "" || info.URL == info.Title {
		return title
	}
	return fmt.Sprintf("[%s](%s)", title, info.URL)
}

func escape(s string) string {
	return strings.NewReplacer("[", "(", "]", ")").Replace(s)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
