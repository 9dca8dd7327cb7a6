package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthdash/internal/service"
)

type fakeSyncer struct {
	calls   atomic.Int64
	days    atomic.Int64
	release chan struct{}
	err     error
}

func (f *fakeSyncer) AutoSync(ctx context.Context, days int, _ chan<- service.SyncProgress) (*service.SyncResult, error) {
	f.calls.Add(1)
	f.days.Store(int64(days))
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &service.SyncResult{Status: "SUCCESS", SyncedDays: days}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidateSpec(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"0 15 6 * * *", false},
		{"*/30 * * * * *", false},
		{"@hourly", false},
		{"@every 10m", false},
		{"not a schedule", true},
		{"0 0 25 * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			err := ValidateSpec(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRunOnce_PassesDays(t *testing.T) {
	f := &fakeSyncer{}
	s := New(f, 5, quietLogger())

	result, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, result.SyncedDays)
	assert.EqualValues(t, 5, f.days.Load())
}

func TestNew_ClampsDays(t *testing.T) {
	f := &fakeSyncer{}
	_, err := New(f, 0, quietLogger()).RunOnce(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.days.Load())
}

func TestRunOnce_SkipsOverlappingRuns(t *testing.T) {
	f := &fakeSyncer{release: make(chan struct{})}
	s := New(f, 3, quietLogger())

	done := make(chan error, 1)
	go func() {
		_, err := s.RunOnce(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	_, err := s.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(f.release)
	require.NoError(t, <-done)

	// The guard is released once the first run returns
	_, err = s.RunOnce(context.Background())
	assert.NoError(t, err)
	assert.EqualValues(t, 2, f.calls.Load())
}

func TestRunOnce_PropagatesSyncError(t *testing.T) {
	boom := errors.New("fitbit down")
	_, err := New(&fakeSyncer{err: boom}, 3, quietLogger()).RunOnce(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRun_FiresOnSchedule(t *testing.T) {
	f := &fakeSyncer{}
	s := New(f, 3, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "* * * * * *") }()

	require.Eventually(t, func() bool { return f.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestRun_RejectsBadSpec(t *testing.T) {
	err := New(&fakeSyncer{}, 3, quietLogger()).Run(context.Background(), "every tuesday")
	assert.Error(t, err)
}
