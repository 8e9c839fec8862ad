package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/datastore"
)

const (
	commandHistoryLimit int = 20
	tracksHistoryLimit  int = 12
)

type Storage struct {
	ds     *datastore.DataStore
	cancel context.CancelFunc

	// mu serialises read-modify-write of guild records.
	mu sync.Mutex
}

type CommandHistoryRecord struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Param       string    `json:"param"`
	Datetime    time.Time `json:"datetime"`
}

// TrackRecord is one played track in a guild's history.
type TrackRecord struct {
	Title       string        `json:"title"`
	URL         string        `json:"url"`
	Source      string        `json:"source"`
	Duration    time.Duration `json:"duration"`
	IsLive      bool          `json:"is_live"`
	RequestedBy string        `json:"requested_by"`
	PlayedAt    time.Time     `json:"played_at"`
}

type Record struct {
	CommandsHistoryList []CommandHistoryRecord `json:"cmd_history"`
	TracksHistoryList   []TrackRecord          `json:"tracks_history"`
}

// New opens the store at filePath. Autosave runs until ctx is done or Close
// is called.
func New(ctx context.Context, filePath string) (*Storage, error) {
	ctx, cancel := context.WithCancel(ctx)
	ds, err := datastore.New(ctx, filePath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open datastore: %w", err)
	}
	return &Storage{ds: ds, cancel: cancel}, nil
}

// Close stops autosave and writes the store to disk.
func (s *Storage) Close() error {
	s.cancel()
	return s.ds.Close()
}

// guildRecord loads the record of a guild; a missing guild yields an empty one.
func (s *Storage) guildRecord(guildID string) (*Record, error) {
	var record Record
	if _, err := s.ds.Get(guildID, &record); err != nil {
		return nil, fmt.Errorf("load guild record: %w", err)
	}
	record.CommandsHistoryList = tail(record.CommandsHistoryList, commandHistoryLimit)
	record.TracksHistoryList = tail(record.TracksHistoryList, tracksHistoryLimit)
	return &record, nil
}

// updateGuildRecord applies fn to the guild's record and stores the result.
func (s *Storage) updateGuildRecord(guildID string, fn func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.guildRecord(guildID)
	if err != nil {
		return err
	}
	fn(record)
	if err := s.ds.Set(guildID, record); err != nil {
		return fmt.Errorf("save guild record: %w", err)
	}
	return nil
}

func tail[T any](list []T, limit int) []T {
	if len(list) > limit {
		return list[len(list)-limit:]
	}
	return list
}
