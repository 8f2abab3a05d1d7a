package cron

import (
	"context"
	"sync"
	"time"

	"github.com/questx-lab/guildsync/pkg/xcontext"
)

type CronJob interface {
	Do(context.Context)
	RunNow() bool
	Next() time.Time
}

type CronJobManager struct {
	mutex   sync.Mutex
	wait    sync.WaitGroup
	jobs    map[CronJob]*time.Timer
	stopped bool
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{jobs: make(map[CronJob]*time.Timer)}
}

// Start schedules every job and blocks until ctx is done. A job which is
// running when ctx is done is waited for, but never scheduled again.
func (m *CronJobManager) Start(ctx context.Context, jobs ...CronJob) {
	xcontext.Logger(ctx).Infof("Cron job manager started with %d jobs", len(jobs))

	m.mutex.Lock()
	for _, job := range jobs {
		m.jobs[job] = nil
	}
	m.mutex.Unlock()

	for _, job := range jobs {
		if job.RunNow() {
			m.wait.Add(1)
			go m.run(ctx, job)
		} else {
			m.schedule(ctx, job)
		}
	}

	<-ctx.Done()
	m.cancel()
	m.wait.Wait()
	xcontext.Logger(ctx).Infof("Cron job manager stopped")
}

func (m *CronJobManager) cancel() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.stopped = true
	for job, timer := range m.jobs {
		// A timer stopped before firing will never call run.
		if timer != nil && timer.Stop() {
			m.wait.Done()
		}
		delete(m.jobs, job)
	}
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	defer m.wait.Done()

	xcontext.Logger(ctx).Debugf("%T is running...", job)
	job.Do(ctx)
	xcontext.Logger(ctx).Debugf("%T ok", job)

	m.schedule(ctx, job)
}

func (m *CronJobManager) schedule(ctx context.Context, job CronJob) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	// Only schedule jobs which are still registered.
	if _, ok := m.jobs[job]; !ok || m.stopped {
		return
	}

	m.wait.Add(1)
	m.jobs[job] = time.AfterFunc(time.Until(job.Next()), func() { m.run(ctx, job) })
}
