package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/pigfarm/internal/config"
	"github.com/mamadbah2/pigfarm/internal/service/cleanup"
)

type purger struct {
	actor string
	days  *int
	calls int
}

func (p *purger) Purge(_ context.Context, actor string, days *int) (cleanup.Result, error) {
	p.calls++
	p.actor, p.days = actor, days
	return cleanup.Result{DeletedCount: 3}, nil
}

type digester struct{ err error }

func (d digester) WeeklyDigest(context.Context) (string, error) { return "digest", d.err }

type outbox struct{ sent []string }

func (o *outbox) Notify(_ context.Context, body string) error {
	o.sent = append(o.sent, body)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		Retention: config.RetentionConfig{Days: 90, CronSchedule: "0 3 * * *", Timezone: "UTC"},
		Reporting: config.ReportingConfig{CronSchedule: "0 20 * * 5"},
	}
}

func TestScheduledPurgeUsesStoredWindow(t *testing.T) {
	p := &purger{}
	s, err := NewScheduler(testConfig(), p, nil, nil, nil)
	require.NoError(t, err)

	s.runPurge()
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "scheduler", p.actor)
	assert.Nil(t, p.days)
}

func TestWeeklyDigest(t *testing.T) {
	out := &outbox{}
	s, err := NewScheduler(testConfig(), &purger{}, digester{}, out, nil)
	require.NoError(t, err)
	s.sendWeeklyDigest()
	assert.Equal(t, []string{"digest"}, out.sent)

	out = &outbox{}
	s, err = NewScheduler(testConfig(), &purger{}, digester{err: errors.New("store down")}, out, nil)
	require.NoError(t, err)
	s.sendWeeklyDigest()
	assert.Empty(t, out.sent)
}

func TestStartRegistersJobs(t *testing.T) {
	s, err := NewScheduler(testConfig(), &purger{}, digester{}, &outbox{}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 2)
	s.Stop()

	s, err = NewScheduler(testConfig(), &purger{}, digester{}, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	assert.Len(t, s.cron.Entries(), 1)
	s.Stop()
}

func TestInvalidScheduleAndTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Retention.Timezone = "Nowhere/Void"
	_, err := NewScheduler(cfg, &purger{}, nil, nil, nil)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Retention.CronSchedule = "bogus"
	s, err := NewScheduler(cfg, &purger{}, nil, nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}
