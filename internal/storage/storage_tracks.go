package storage

// AppendTrack records a played track, keeping the newest tracksHistoryLimit entries.
func (s *Storage) AppendTrack(guildID string, track TrackRecord) error {
	return s.updateGuildRecord(guildID, func(r *Record) {
		r.TracksHistoryList = tail(append(r.TracksHistoryList, track), tracksHistoryLimit)
	})
}

// FetchTracksHistory returns played tracks, newest first.
func (s *Storage) FetchTracksHistory(guildID string) ([]TrackRecord, error) {
	record, err := s.guildRecord(guildID)
	if err != nil {
		return nil, err
	}

	out := make([]TrackRecord, len(record.TracksHistoryList))
	for i, t := range record.TracksHistoryList {
		out[len(out)-1-i] = t
	}
	return out, nil
}
