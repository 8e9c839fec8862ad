package player

import "errors"

var (
	// ErrNotConnected is returned by controls on a guild with no voice connection.
	ErrNotConnected = errors.New("wrong instance to process operation")
	ErrNotInVoice   = errors.New("you're not connected to a voice channel")
	ErrQueueEmpty   = errors.New("there are no songs in the queue")
	ErrUnknownGuild = errors.New("unknown guild")
	ErrNoSelection  = errors.New("no search result selected")

	ErrResolutionFailure = errors.New("track resolution failed")
	ErrConnectionLost    = errors.New("voice connection lost")
	ErrTransientNotify   = errors.New("notification failed")
	ErrUnexpectedLoop    = errors.New("unexpected playback loop failure")
)
