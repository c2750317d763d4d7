package store

import (
	"context"
	"testing"
	"time"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAttempt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordAttempt(ctx, contact.Attempt{
		SenderName:  "Ann",
		SenderEmail: "ann@x.com",
		Phase:       contact.PhaseSuccess,
		Message:     contact.MsgSent,
		Duration:    1500 * time.Millisecond,
		At:          at,
	}))
	require.NoError(t, s.RecordAttempt(ctx, contact.Attempt{
		SenderName:  "Bob",
		SenderEmail: "bob@y.com",
		Phase:       contact.PhaseError,
		Kind:        contact.KindTimeout,
		Message:     contact.MsgTimedOut,
		Duration:    10 * time.Second,
		At:          at.Add(time.Minute),
	}))

	records, err := s.RecentAttempts(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Bob", records[0].SenderName)
	assert.Equal(t, contact.KindTimeout, records[0].Kind)
	assert.Equal(t, int64(10000), records[0].DurationMS)
	assert.True(t, at.Add(time.Minute).Equal(records[0].CreatedAt))

	assert.Equal(t, "Ann", records[1].SenderName)
	assert.Equal(t, contact.PhaseSuccess, records[1].Phase)
	assert.Equal(t, contact.Kind(""), records[1].Kind)
}

func TestRecordAttemptImplementsRecorder(t *testing.T) {
	var _ contact.Recorder = (*Store)(nil)
}

func TestTrackVisitorAndStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return now.Add(-10 * 24 * time.Hour) }
	require.NoError(t, s.TrackVisitor(ctx, "hash-old", "curl", "/"))

	s.now = func() time.Time { return now.Add(-3 * 24 * time.Hour) }
	require.NoError(t, s.TrackVisitor(ctx, "hash-a", "firefox", "/"))

	s.now = func() time.Time { return now.Add(-time.Hour) }
	require.NoError(t, s.TrackVisitor(ctx, "hash-a", "firefox", "/resume"))
	require.NoError(t, s.TrackVisitor(ctx, "hash-b", "chrome", "/"))

	require.NoError(t, s.RecordAttempt(ctx, contact.Attempt{SenderName: "Ann", SenderEmail: "ann@x.com", Phase: contact.PhaseSuccess, At: now}))
	require.NoError(t, s.RecordAttempt(ctx, contact.Attempt{SenderName: "Bob", SenderEmail: "bob@y.com", Phase: contact.PhaseError, Kind: contact.KindTimeout, At: now}))
	require.NoError(t, s.RecordAttempt(ctx, contact.Attempt{SenderName: "Cy", SenderEmail: "cy@z.com", Phase: contact.PhaseError, Kind: contact.KindUnknownSend, At: now}))

	s.now = func() time.Time { return now }
	stats, err := s.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalVisitors)
	assert.Equal(t, int64(3), stats.UniqueVisitors)
	assert.Equal(t, int64(2), stats.VisitorsToday)
	assert.Equal(t, int64(3), stats.VisitorsThisWeek)
	assert.Equal(t, int64(3), stats.TotalAttempts)
	assert.Equal(t, int64(1), stats.MessagesSent)
	assert.Equal(t, int64(2), stats.FailedAttempts)
	assert.Equal(t, int64(1), stats.TimedOutAttempts)
	assert.Len(t, stats.RecentAttempts, 3)
	assert.Len(t, stats.RecentVisitors, 4)
	assert.Equal(t, "hash-b", stats.RecentVisitors[0].HashedIP)
}

func TestCleanupVisitors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return now.Add(-400 * 24 * time.Hour) }
	require.NoError(t, s.TrackVisitor(ctx, "ancient", "", "/"))
	s.now = func() time.Time { return now.Add(-24 * time.Hour) }
	require.NoError(t, s.TrackVisitor(ctx, "recent", "", "/"))

	s.now = func() time.Time { return now }
	removed, err := s.CleanupVisitors(ctx, VisitorRetention)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	visitors, err := s.RecentVisitors(ctx, 10)
	require.NoError(t, err)
	require.Len(t, visitors, 1)
	assert.Equal(t, "recent", visitors[0].HashedIP)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
