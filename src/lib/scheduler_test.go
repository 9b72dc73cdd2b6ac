package lib

import (
	"kost/src/config"
	"kost/src/types"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestScheduler(t *testing.T, task GenerateTask) *PaymentScheduler {
	t.Helper()
	if task == nil {
		task = func(month, year int) (int, []types.GenerationError, error) {
			return 0, nil, nil
		}
	}
	ps, err := NewPaymentScheduler(task)
	if err != nil {
		t.Fatalf("could not create scheduler: %s", err.Error())
	}
	t.Cleanup(func() {
		ps.Shutdown()
	})
	return ps
}

func TestSchedulerInitialStatus(t *testing.T) {
	ps := newTestScheduler(t, nil)

	status := ps.Status()
	assert.False(t, status.IsRunning)
	assert.Nil(t, status.LastRun)
	assert.Nil(t, status.NextRun)
	assert.Equal(t, config.SCHEDULER_CRON_EXPRESSION, status.CronExpression)
	assert.Equal(t, config.SCHEDULER_TIMEZONE, status.Timezone)
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	ps := newTestScheduler(t, nil)

	ps.Start()
	first := ps.Status()
	assert.True(t, first.IsRunning)
	assert.NotNil(t, first.NextRun)

	ps.Start()
	second := ps.Status()
	assert.True(t, second.IsRunning)
	assert.Equal(t, *first.NextRun, *second.NextRun)
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	ps := newTestScheduler(t, nil)

	ps.Start()
	ps.Stop()
	status := ps.Status()
	assert.False(t, status.IsRunning)
	assert.Nil(t, status.NextRun)

	ps.Stop()
	assert.False(t, ps.Status().IsRunning)
}

func TestSchedulerTriggerManual(t *testing.T) {
	var gotMonth, gotYear int
	ps := newTestScheduler(t, func(month, year int) (int, []types.GenerationError, error) {
		gotMonth, gotYear = month, year
		return 3, []types.GenerationError{{UserEmail: "tenant@example.com"}}, nil
	})

	generated, genErrors, err := ps.TriggerManual(6, 2026)
	assert.Nil(t, err)
	assert.Equal(t, 3, generated)
	assert.Len(t, genErrors, 1)
	assert.Equal(t, 6, gotMonth)
	assert.Equal(t, 2026, gotYear)

	status := ps.Status()
	assert.NotNil(t, status.LastRun)
}

func TestSchedulerComputeNextRun(t *testing.T) {
	ps := newTestScheduler(t, nil)
	loc := ps.location

	now := time.Date(2026, time.March, 10, 15, 30, 0, 0, loc)
	next := ps.computeNextRun(now)
	assert.Equal(t, time.Date(2026, time.April, 1, 0, 0, 0, 0, loc), next)

	// Exactly at a fire instant the next run is a month away.
	onTheDot := time.Date(2026, time.April, 1, 0, 0, 0, 0, loc)
	next = ps.computeNextRun(onTheDot)
	assert.Equal(t, time.Date(2026, time.May, 1, 0, 0, 0, 0, loc), next)

	// Year rollover.
	december := time.Date(2026, time.December, 31, 23, 59, 0, 0, loc)
	next = ps.computeNextRun(december)
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, loc), next)
}

func TestSchedulerSingleton(t *testing.T) {
	ps := newTestScheduler(t, nil)
	SetPaymentScheduler(ps)
	assert.Equal(t, ps, GetPaymentScheduler())
}
