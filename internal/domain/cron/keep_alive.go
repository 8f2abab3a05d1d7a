package cron

import (
	"context"
	"time"

	"github.com/questx-lab/guildsync/pkg/api"
	"github.com/questx-lab/guildsync/pkg/xcontext"
)

// KeepAliveCronJob pings the public health endpoint of this service so that
// hosts which idle inactive instances keep it running.
type KeepAliveCronJob struct {
	apiGenerator api.Generator
	interval     time.Duration
	firstRun     time.Time
	started      bool
}

func NewKeepAliveCronJob(
	apiGenerator api.Generator, initialDelay, interval time.Duration,
) *KeepAliveCronJob {
	return &KeepAliveCronJob{
		apiGenerator: apiGenerator,
		interval:     interval,
		firstRun:     time.Now().Add(initialDelay),
	}
}

func (job *KeepAliveCronJob) Do(ctx context.Context) {
	job.started = true

	resp, err := job.apiGenerator.New("/health").GET(ctx)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Keep-alive ping failed: %v", err)
		return
	}

	xcontext.Logger(ctx).Infof("Keep-alive ping: %d", resp.Code)
}

func (job *KeepAliveCronJob) RunNow() bool {
	return false
}

func (job *KeepAliveCronJob) Next() time.Time {
	if !job.started {
		return job.firstRun
	}

	return time.Now().Add(job.interval)
}
