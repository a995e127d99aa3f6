package scheduler

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/studybot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pending int

func (p pending) PendingReviewCount() int { return int(p) }

type recordingNotifier struct {
	counts []int
	err    error
}

func (n *recordingNotifier) SendReviewReminder(count int) error {
	n.counts = append(n.counts, count)
	return n.err
}

func newTestScheduler(source ReviewSource, notifier Notifier, hour int) *Scheduler {
	cfg := config.SchedulerConfig{Enabled: true, Interval: time.Hour, StartHour: 8, EndHour: 22}
	s := New(cfg, source, notifier, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2024, 3, 1, hour, 15, 0, 0, time.Local) }
	return s
}

func TestCheckAndSendReminders(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		pending int
		hour    int
		want    []int
	}{
		{name: "inside window", pending: 3, hour: 12, want: []int{3}},
		{name: "window start is inclusive", pending: 1, hour: 8, want: []int{1}},
		{name: "window end is inclusive", pending: 1, hour: 22, want: []int{1}},
		{name: "before window", pending: 3, hour: 7},
		{name: "after window", pending: 3, hour: 23},
		{name: "nothing pending", pending: 0, hour: 12},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n := &recordingNotifier{}
			newTestScheduler(pending(tt.pending), n, tt.hour).checkAndSendReminders()
			assert.Equal(t, tt.want, n.counts)
		})
	}
}

func TestSendFailureIsLogged(t *testing.T) {
	t.Parallel()
	n := &recordingNotifier{err: errors.New("telegram down")}
	s := newTestScheduler(pending(2), n, 10)
	assert.NotPanics(t, s.checkAndSendReminders)
	assert.Equal(t, []int{2}, n.counts)
}

func TestStartStop(t *testing.T) {
	t.Parallel()
	s := newTestScheduler(pending(0), &recordingNotifier{}, 12)
	require.NoError(t, s.Start())
	s.Stop()
}
