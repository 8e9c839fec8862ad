package music

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keshon/jukebox/internal/music/embed"
	"github.com/keshon/jukebox/internal/music/player"
	"github.com/keshon/jukebox/internal/music/sources"
)

const selectPrefix = "music-play:select:"

var (
	ErrSelectionExpired = errors.New("selection expired")
	ErrNotYourSelection = errors.New("selection belongs to another user")
)

type poster interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// SelectPanel shows search results as a select menu and waits for the
// requester to pick one. It implements player.Panel.
type SelectPanel struct {
	api poster

	mu      sync.Mutex
	pending map[string]*selection
}

type selection struct {
	owner   string
	results []sources.TrackInfo
	choice  chan int
}

func NewSelectPanel(api poster) *SelectPanel {
	return &SelectPanel{api: api, pending: make(map[string]*selection)}
}

// Select returns nil without error when ctx ends before a pick.
func (p *SelectPanel) Select(ctx context.Context, req player.Request, results []sources.TrackInfo) (*sources.TrackInfo, error) {
	if len(results) == 0 {
		return nil, sources.ErrNoResults
	}

	id := uuid.NewString()
	sel := &selection{owner: req.Author.ID, results: results, choice: make(chan int, 1)}
	p.mu.Lock()
	p.pending[id] = sel
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.pending, id)
		p.mu.Unlock()
	}()

	msg, err := p.api.ChannelMessageSendComplex(req.ChannelID, selectMessage(id, req, results), discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("send selection: %w", err)
	}
	defer func() {
		if err := p.api.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
			log.Debug().Err(err).Msg("[Panel] failed to delete selection")
		}
	}()

	select {
	case i := <-sel.choice:
		r := results[i]
		return &r, nil
	case <-ctx.Done():
		return nil, nil
	}
}

// Choose delivers a pick for the selection id.
func (p *SelectPanel) Choose(id, userID, value string) (*sources.TrackInfo, error) {
	p.mu.Lock()
	sel, ok := p.pending[id]
	p.mu.Unlock()
	if !ok {
		return nil, ErrSelectionExpired
	}
	if sel.owner != "" && sel.owner != userID {
		return nil, ErrNotYourSelection
	}

	i, err := strconv.Atoi(value)
	if err != nil || i < 0 || i >= len(sel.results) {
		return nil, fmt.Errorf("invalid selection %q", value)
	}
	select {
	case sel.choice <- i:
	default:
		return nil, ErrSelectionExpired
	}
	return &sel.results[i], nil
}

func selectMessage(id string, req player.Request, results []sources.TrackInfo) *discordgo.MessageSend {
	options := make([]discordgo.SelectMenuOption, len(results))
	for i, r := range results {
		desc := embed.Duration(&r)
		if r.Uploader != "" {
			desc = r.Uploader + " · " + desc
		}
		options[i] = discordgo.SelectMenuOption{
			Label:       truncate(r.DisplayTitle(), 100),
			Value:       strconv.Itoa(i),
			Description: truncate(desc, 100),
		}
	}

	content := "Pick a song:"
	if req.Author.ID != "" {
		content = fmt.Sprintf("<@%s>, pick a song:", req.Author.ID)
	}
	return &discordgo.MessageSend{
		Content: content,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    selectPrefix + id,
					Placeholder: "Search results",
					Options:     options,
				},
			}},
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
