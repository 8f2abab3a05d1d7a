package cron

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/questx-lab/guildsync/pkg/api"
	"github.com/questx-lab/guildsync/pkg/testutil"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runNow   bool
	interval time.Duration
	count    int32
}

func (job *countingJob) Do(context.Context) {
	atomic.AddInt32(&job.count, 1)
}

func (job *countingJob) RunNow() bool {
	return job.runNow
}

func (job *countingJob) Next() time.Time {
	return time.Now().Add(job.interval)
}

func Test_CronJobManager(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.MockContext())

	fast := &countingJob{runNow: true, interval: 5 * time.Millisecond}
	never := &countingJob{interval: time.Hour}

	done := make(chan struct{})
	go func() {
		NewCronJobManager().Start(ctx, fast, never)
		close(done)
	}()

	time.Sleep(60 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		require.FailNow(t, "manager did not stop")
	}

	require.GreaterOrEqual(t, atomic.LoadInt32(&fast.count), int32(2))
	require.Zero(t, atomic.LoadInt32(&never.count))

	// No run is scheduled after stop.
	count := atomic.LoadInt32(&fast.count)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, count, atomic.LoadInt32(&fast.count))
}

func Test_KeepAliveCronJob(t *testing.T) {
	ctx := testutil.MockContext()

	generator := &api.MockAPIGenerator{}
	generator.MockClient.GETFunc = func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
		return &api.Response{Code: http.StatusOK}, nil
	}

	job := NewKeepAliveCronJob(generator, 30*time.Second, 12*time.Minute)
	require.False(t, job.RunNow())
	require.WithinDuration(t, time.Now().Add(30*time.Second), job.Next(), time.Second)

	job.Do(ctx)
	require.Equal(t, []string{"/health"}, generator.Paths)
	require.WithinDuration(t, time.Now().Add(12*time.Minute), job.Next(), time.Second)

	// A failed ping is only logged.
	generator.MockClient.GETFunc = func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
		return nil, errors.New("connection refused")
	}
	job.Do(ctx)
	require.Len(t, generator.Paths, 2)
}
