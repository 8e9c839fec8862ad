package player

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/jukebox/internal/music/sources"
)

func info(title string) *sources.TrackInfo {
	return &sources.TrackInfo{
		URL:       "https://example.com/" + title,
		StreamURL: "https://cdn.example.com/" + title,
		Title:     title,
	}
}

type fakeConn struct {
	mu           sync.Mutex
	channel      string
	members      int
	connected    bool
	current      *sources.TrackInfo
	paused       bool
	played       []string
	stops        int
	disconnected int
	moveErr      error
}

func newFakeConn(channel string) *fakeConn {
	return &fakeConn{channel: channel, members: 2, connected: true}
}

func (c *fakeConn) Play(_ context.Context, info *sources.TrackInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = info
	c.paused = false
	c.played = append(c.played, info.Title)
	return nil
}

func (c *fakeConn) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.paused = true
	}
}

func (c *fakeConn) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = false
}

func (c *fakeConn) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.stops++
	}
	c.current = nil
	c.paused = false
}

func (c *fakeConn) Move(_ context.Context, channelID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.moveErr != nil {
		return c.moveErr
	}
	c.channel = channelID
	return nil
}

func (c *fakeConn) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && !c.paused
}

func (c *fakeConn) IsPaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.paused
}

func (c *fakeConn) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeConn) ChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

func (c *fakeConn) Members() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.members
}

func (c *fakeConn) Disconnect(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.disconnected++
	return nil
}

// finish ends the current track as if the stream ran out.
func (c *fakeConn) finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	c.paused = false
}

func (c *fakeConn) setMembers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.members = n
}

func (c *fakeConn) playedTitles() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.played...)
}

func (c *fakeConn) nowPlaying() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ""
	}
	return c.current.Title
}

func (c *fakeConn) disconnects() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

type fakeConnector struct {
	mu    sync.Mutex
	conns []*fakeConn
	err   error
}

func (f *fakeConnector) Connect(_ context.Context, _, channelID string) (Conn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	c := newFakeConn(channelID)
	f.conns = append(f.conns, c)
	return c, nil
}

func (f *fakeConnector) last() *fakeConn {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.conns) == 0 {
		return nil
	}
	return f.conns[len(f.conns)-1]
}

func (f *fakeConnector) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conns)
}

type sent struct {
	text    string
	title   string
	deleted bool
}

type fakeChannel struct {
	mu   sync.Mutex
	msgs []*sent
}

type fakeMessage struct {
	ch  *fakeChannel
	msg *sent
}

func (c *fakeChannel) Send(_ context.Context, text string, embed *discordgo.MessageEmbed) (Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := &sent{text: text}
	if embed != nil {
		m.title = embed.Title + ": " + embed.Description
	}
	c.msgs = append(c.msgs, m)
	return &fakeMessage{ch: c, msg: m}, nil
}

func (m *fakeMessage) Delete(context.Context) error {
	m.ch.mu.Lock()
	defer m.ch.mu.Unlock()
	m.msg.deleted = true
	return nil
}

// count returns how many messages contain s in their text or embed.
func (c *fakeChannel) count(s string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.msgs {
		if strings.Contains(m.text, s) || strings.Contains(m.title, s) {
			n++
		}
	}
	return n
}

func (c *fakeChannel) find(s string) (sent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, m := range c.msgs {
		if strings.Contains(m.text, s) || strings.Contains(m.title, s) {
			return *m, true
		}
	}
	return sent{}, false
}

type resolution struct {
	info *sources.TrackInfo
	err  error
	gate chan struct{}
}

type fakeResolver struct {
	mu        sync.Mutex
	urls      map[string]*resolution
	search    []sources.TrackInfo
	playlists map[string][]sources.TrackInfo
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{urls: map[string]*resolution{}, playlists: map[string][]sources.TrackInfo{}}
}

// add registers a track under its page url and returns that url.
func (r *fakeResolver) add(title string) string {
	i := info(title)
	r.mu.Lock()
	r.urls[i.URL] = &resolution{info: i}
	r.mu.Unlock()
	return i.URL
}

// gated registers a track whose resolution blocks until the returned func is called.
func (r *fakeResolver) gated(title string, err error) (string, func()) {
	i := info(title)
	gate := make(chan struct{})
	r.mu.Lock()
	r.urls[i.URL] = &resolution{info: i, err: err, gate: gate}
	r.mu.Unlock()
	return i.URL, func() { close(gate) }
}

func (r *fakeResolver) Search(context.Context, string, int) ([]sources.TrackInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.search) == 0 {
		return nil, sources.ErrNoResults
	}
	return r.search, nil
}

func (r *fakeResolver) Resolve(ctx context.Context, url string) (*sources.TrackInfo, error) {
	r.mu.Lock()
	res, ok := r.urls[url]
	r.mu.Unlock()
	if !ok {
		return nil, errors.New("unknown url " + url)
	}
	if res.gate != nil {
		select {
		case <-res.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if res.err != nil {
		return nil, res.err
	}
	return res.info, nil
}

func (r *fakeResolver) IsPlaylist(url string) bool {
	return strings.Contains(url, "list=")
}

func (r *fakeResolver) LeadURL(url string) string {
	base, _, _ := strings.Cut(url, "?list=")
	if base == url || !strings.Contains(base, "/") || strings.HasSuffix(base, "/playlist") {
		return ""
	}
	return base
}

func (r *fakeResolver) Playlist(_ context.Context, url string) ([]sources.TrackInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, ok := r.playlists[url]
	if !ok {
		return nil, errors.New("unknown playlist")
	}
	return append([]sources.TrackInfo(nil), entries...), nil
}

type pickPanel struct {
	index int
}

func (p pickPanel) Select(_ context.Context, _ Request, results []sources.TrackInfo) (*sources.TrackInfo, error) {
	if p.index < 0 || p.index >= len(results) {
		return nil, nil
	}
	r := results[p.index]
	return &r, nil
}

type fakeEvents struct {
	mu       sync.Mutex
	skips    int
	finished int
	errors   []error
	added    []string
}

func (e *fakeEvents) Error(_ string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errors = append(e.errors, err)
}

func (e *fakeEvents) Skip(string, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.skips++
}

func (e *fakeEvents) Added(_ string, info *sources.TrackInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.added = append(e.added, info.Title)
}

func (e *fakeEvents) Playing(string, *sources.TrackInfo, string) {}

func (e *fakeEvents) Finished(string, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finished++
}

func (e *fakeEvents) errorCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errors)
}

func (e *fakeEvents) skipCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.skips
}

func (e *fakeEvents) finishedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finished
}

func (e *fakeEvents) addedTitles() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.added...)
}
