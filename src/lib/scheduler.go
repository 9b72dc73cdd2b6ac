package lib

import (
	"kost/src/config"
	"kost/src/types"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// GenerateTask runs payment generation for one billing period and
// reports how many payments were created plus any per-tenant errors.
type GenerateTask func(month, year int) (int, []types.GenerationError, error)

// PaymentScheduler owns the recurring payment-generation job: one cron
// job on the first day of each month, 00:00 Asia/Jakarta. Run state is
// guarded by its own mutex so status reads never race the fire events.
type PaymentScheduler struct {
	mu        sync.Mutex
	scheduler gocron.Scheduler
	job       gocron.Job
	task      GenerateTask
	location  *time.Location
	isRunning bool
	lastRun   *time.Time
	nextRun   *time.Time
}

var paymentScheduler *PaymentScheduler

func NewPaymentScheduler(task GenerateTask) (*PaymentScheduler, error) {
	loc, err := time.LoadLocation(config.SCHEDULER_TIMEZONE)
	if err != nil {
		log.Printf("Error loading timezone %s: %s\n", config.SCHEDULER_TIMEZONE, err.Error())
		return nil, err
	}
	sched, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		log.Printf("Error initializing Scheduler: %s\n", err.Error())
		return nil, err
	}
	ps := &PaymentScheduler{
		scheduler: sched,
		task:      task,
		location:  loc,
	}
	j, err := sched.NewJob(
		gocron.CronJob(config.SCHEDULER_CRON_EXPRESSION, false),
		gocron.NewTask(ps.runScheduled),
	)
	if err != nil {
		return nil, err
	}
	ps.job = j
	return ps, nil
}

// SetPaymentScheduler installs the process-wide scheduler instance.
func SetPaymentScheduler(ps *PaymentScheduler) {
	paymentScheduler = ps
}

func GetPaymentScheduler() *PaymentScheduler {
	return paymentScheduler
}

func (ps *PaymentScheduler) runScheduled() {
	now := time.Now().In(ps.location)
	ps.mu.Lock()
	ps.lastRun = &now
	ps.mu.Unlock()

	generated, genErrors, err := ps.task(int(now.Month()), now.Year())
	if err != nil {
		log.Printf("Error generating monthly payments: %s\n", err.Error())
	} else {
		log.Printf("Scheduled generation done: generated=%d errors=%d\n", generated, len(genErrors))
	}
	ps.refreshNextRun()
}

// Start arms the cron job. Calling it while running is a no-op, so the
// job can never double-fire.
func (ps *PaymentScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.isRunning {
		return
	}
	ps.scheduler.Start()
	ps.isRunning = true
	next := ps.computeNextRun(time.Now().In(ps.location))
	ps.nextRun = &next
	log.Printf("Payment scheduler started. Next run: %s\n", next.Format(config.TIME_PARSE_FORMAT))
}

// Stop disarms the job. Safe to call when already stopped.
func (ps *PaymentScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if !ps.isRunning {
		return
	}
	if err := ps.scheduler.StopJobs(); err != nil {
		log.Printf("Error stopping scheduler jobs: %s\n", err.Error())
	}
	ps.isRunning = false
	ps.nextRun = nil
	log.Println("Payment scheduler stopped")
}

// TriggerManual runs generation immediately for an arbitrary period,
// independent of the timer.
func (ps *PaymentScheduler) TriggerManual(month, year int) (int, []types.GenerationError, error) {
	now := time.Now().In(ps.location)
	ps.mu.Lock()
	ps.lastRun = &now
	ps.mu.Unlock()
	return ps.task(month, year)
}

func (ps *PaymentScheduler) Status() types.SchedulerStatus {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return types.SchedulerStatus{
		IsRunning:      ps.isRunning,
		LastRun:        ps.lastRun,
		NextRun:        ps.nextRun,
		CronExpression: config.SCHEDULER_CRON_EXPRESSION,
		Timezone:       config.SCHEDULER_TIMEZONE,
		Description:    "Auto-generate monthly rent payments (1st of month, 00:00)",
	}
}

func (ps *PaymentScheduler) refreshNextRun() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if !ps.isRunning {
		return
	}
	if next, err := ps.job.NextRun(); err == nil {
		ps.nextRun = &next
		return
	}
	next := ps.computeNextRun(time.Now().In(ps.location))
	ps.nextRun = &next
}

// computeNextRun returns midnight on the first day of the next month.
func (ps *PaymentScheduler) computeNextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, ps.location)
	if !next.After(now) {
		next = next.AddDate(0, 1, 0)
	}
	return next
}

// Shutdown releases the underlying gocron scheduler.
func (ps *PaymentScheduler) Shutdown() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.isRunning = false
	ps.nextRun = nil
	return ps.scheduler.Shutdown()
}
