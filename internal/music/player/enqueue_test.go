package player

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCanceled(t *testing.T) {
	assert.True(t, isCanceled(context.Canceled))
	assert.True(t, isCanceled(fmt.Errorf("resolve: %w", context.DeadlineExceeded)))
	assert.False(t, isCanceled(errors.New("boom")))
	assert.False(t, isCanceled(nil))
}

func TestDroppedTrackRefusesNotice(t *testing.T) {
	ch := &fakeChannel{}
	first, err := ch.Send(context.Background(), "queued", nil)
	require.NoError(t, err)

	track := &Track{}
	require.True(t, track.attachNotice(first))
	assert.Same(t, first, track.drop())
	assert.True(t, track.isDropped())

	second, err := ch.Send(context.Background(), "queued", nil)
	require.NoError(t, err)
	assert.False(t, track.attachNotice(second))
	assert.Nil(t, track.drop())
}
