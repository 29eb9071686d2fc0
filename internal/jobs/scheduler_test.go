package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kennel-exchange/internal/domain/newsletter"
	"kennel-exchange/internal/platform/metrics"
)

func TestAdd_RejectsBadSpec(t *testing.T) {
	s := NewScheduler(nil, nil)
	err := s.Add("x", "every tuesday", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

func TestRun_CountsResultsAndRecoversPanics(t *testing.T) {
	m := metrics.New()
	s := NewScheduler(nil, m)

	require.NoError(t, s.Add("good", "@every 1h", func(context.Context) error { return nil }))
	require.NoError(t, s.Add("bad", "@every 1h", func(context.Context) error { return errors.New("boom") }))
	require.NoError(t, s.Add("panics", "@every 1h", func(context.Context) error { panic("kaboom") }))

	for _, e := range s.cron.Entries() {
		assert.NotPanics(t, e.WrappedJob.Run)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues("good", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobRuns.WithLabelValues("bad", "error")))
}

type fakeSender struct{ at time.Time }

func (f *fakeSender) SendSeasonal(ctx context.Context, now time.Time) (newsletter.Result, error) {
	f.at = now
	return newsletter.Result{Sent: 1}, nil
}

type fakeRefresher struct{ window time.Duration }

func (f *fakeRefresher) RefreshExpiring(ctx context.Context, window time.Duration) (int, int, error) {
	f.window = window
	return 2, 0, nil
}

func TestRegister(t *testing.T) {
	s := NewScheduler(nil, nil)
	fixed := time.Date(2026, 12, 1, 9, 0, 0, 0, time.UTC)
	sender := &fakeSender{}
	ref := &fakeRefresher{}

	require.NoError(t, Register(s, Deps{
		Newsletter:     sender,
		NewsletterCron: "0 9 1 * *",
		OAuth:          ref,
		Now:            func() time.Time { return fixed },
	}))
	require.Equal(t, 2, s.Len())

	for _, e := range s.cron.Entries() {
		e.WrappedJob.Run()
	}
	assert.Equal(t, fixed, sender.at)
	assert.Equal(t, OAuthRefreshWindow, ref.window)
}

func TestRegister_SkipsMissing(t *testing.T) {
	s := NewScheduler(nil, nil)
	require.NoError(t, Register(s, Deps{Newsletter: &fakeSender{}}))
	assert.Equal(t, 0, s.Len())
}
