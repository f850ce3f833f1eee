package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (c *countingRefresher) Refresh(context.Context) (int, int) {
	c.calls.Add(1)
	return 2, 1
}

func TestRegister_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(context.Background(), &countingRefresher{})
	assert.Error(t, s.Register("not a cron"))
	assert.Error(t, s.Register("0 30 21 * *"), "five-field spec lacks seconds")
	assert.NoError(t, s.Register("0 30 21 * * 1-5"))
}

func TestRunNow(t *testing.T) {
	r := &countingRefresher{}
	s := NewScheduler(context.Background(), r)
	refreshed, failed := s.RunNow()
	assert.Equal(t, 2, refreshed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestRunNow_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &countingRefresher{}
	NewScheduler(ctx, r).RunNow()
	assert.Zero(t, r.calls.Load())
}

func TestCronFires(t *testing.T) {
	r := &countingRefresher{}
	s := NewScheduler(context.Background(), r)
	require.NoError(t, s.Register("* * * * * *"))
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}
