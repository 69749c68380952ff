package loadtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"
	"umami-loadtest/internal/components/assert"
	"umami-loadtest/internal/components/telemetry"
	"umami-loadtest/internal/visit"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const report_runner = "loadtest.runner"

// FetcherFactory creates the transport of a new virtual user.
type FetcherFactory func(tel telemetry.API) (visit.Fetcher, error)

type RunnerOptions struct {
	Users     int
	HatchRate float64
	// RunTime of 0 runs until the context is cancelled.
	RunTime time.Duration
	WaitMin time.Duration
	WaitMax time.Duration
	// Seed of 0 seeds from the clock.
	Seed int64
}

type Runner struct {
	plan       Plan
	opts       RunnerOptions
	newFetcher FetcherFactory
	meters     telemetry.Meters
	tel        telemetry.API
}

func NewRunner(plan Plan, opts RunnerOptions, newFetcher FetcherFactory, meters telemetry.Meters, tel telemetry.API) *Runner {
	assert.NotNil(newFetcher)
	assert.NotNil(tel)
	assert.Positive("users", opts.Users)
	if opts.HatchRate <= 0 {
		panic(fmt.Sprintf("expected hatch rate to be positive, got %v", opts.HatchRate))
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}
	return &Runner{
		plan:       plan,
		opts:       opts,
		newFetcher: newFetcher,
		meters:     meters,
		tel:        telemetry.NewScopedAPI("loadtest", tel),
	}
}

type sampleKind int

const (
	taskSample sampleKind = iota
	requestSample
)

type sample struct {
	kind     sampleKind
	name     string
	duration time.Duration
	failure  string
}

// Run starts the virtual users at the hatch rate and blocks until the run time elapses or ctx
// is cancelled. Cancelling ctx is a normal way to end a run, the report covers what ran until
// then.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if r.opts.RunTime > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.opts.RunTime)
		defer cancel()
	}

	samples := make(chan sample, r.opts.Users*4)
	tasks := statsTable{}
	requests := statsTable{}
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for s := range samples {
			failed := s.failure != ""
			switch s.kind {
			case taskSample:
				tasks.add(s.name, s.duration, s.failure)
				r.meters.RecordTask(context.Background(), s.name, s.duration, failed)
			case requestSample:
				requests.add(s.name, s.duration, s.failure)
				r.meters.RecordRequest(context.Background(), s.name, s.duration, failed)
			}
		}
	}()

	started := time.Now()
	hatch := rate.NewLimiter(rate.Limit(r.opts.HatchRate), 1)
	group, groupCtx := errgroup.WithContext(ctx)
	hatched := 0

	var spawnErr error
	for id := 0; id < r.opts.Users; id++ {
		if err := hatch.Wait(ctx); err != nil {
			// the run ended while users were still hatching
			break
		}

		userTel := telemetry.NewScopedAPI(fmt.Sprintf("user-%d", id), r.tel)
		fetcher, err := r.newFetcher(userTel)
		if err != nil {
			spawnErr = fmt.Errorf("create user %d: %w", id, err)
			break
		}
		rnd := rand.New(rand.NewSource(r.opts.Seed + int64(id)))
		u := &user{
			id:      id,
			runner:  r,
			samples: samples,
			session: visit.NewSession(&recordingFetcher{inner: fetcher, samples: samples}, rnd, userTel),
			rand:    rnd,
		}
		hatched++
		group.Go(func() error {
			return u.run(groupCtx)
		})
	}
	r.tel.ReportDebug("hatching complete", "users", hatched)

	if spawnErr != nil {
		r.tel.ReportBroken(report_runner, spawnErr)
		cancel()
	}
	err := group.Wait()
	close(samples)
	<-collected

	report := Report{
		Started:  started,
		Elapsed:  time.Since(started),
		Users:    hatched,
		Tasks:    tasks.sorted(),
		Requests: requests.sorted(),
		Total:    requests.aggregate("Aggregated"),
	}
	return report, errors.Join(spawnErr, err)
}

type user struct {
	id      int
	runner  *Runner
	samples chan<- sample
	session *visit.Session
	rand    *rand.Rand
}

func (u *user) run(ctx context.Context) error {
	u.runner.meters.UserStarted(context.Background())
	defer u.runner.meters.UserStopped(context.Background())

	for ctx.Err() == nil {
		_, task := u.runner.plan.Pick(u.rand)

		start := time.Now()
		err := task.Flow(visit.WithTaskName(ctx, task.Name), u.session)
		duration := time.Since(start)

		// a visit cut short by the end of the run is not a sample
		if err != nil && ctx.Err() != nil {
			return nil
		}
		failure := ""
		if err != nil {
			failure = err.Error()
		}
		u.samples <- sample{kind: taskSample, name: task.Name, duration: duration, failure: failure}

		if !u.wait(ctx) {
			return nil
		}
	}
	return nil
}

// wait sleeps a random duration in the wait range, it returns false if ctx ended first.
func (u *user) wait(ctx context.Context) bool {
	lo, hi := u.runner.opts.WaitMin, u.runner.opts.WaitMax
	if hi <= 0 {
		return ctx.Err() == nil
	}
	d := lo
	if hi > lo {
		d += time.Duration(u.rand.Int63n(int64(hi-lo) + 1))
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// recordingFetcher times every request of a user.
type recordingFetcher struct {
	inner   visit.Fetcher
	samples chan<- sample
}

func (f *recordingFetcher) record(ctx context.Context, name string, start time.Time, res visit.Page, err error) {
	if err != nil && ctx.Err() != nil {
		return
	}
	failure := ""
	switch {
	case err != nil:
		failure = err.Error()
	case res.StatusCode >= http.StatusBadRequest:
		failure = fmt.Sprintf("%d %s", res.StatusCode, http.StatusText(res.StatusCode))
	}
	f.samples <- sample{kind: requestSample, name: name, duration: time.Since(start), failure: failure}
}

func (f *recordingFetcher) Get(ctx context.Context, path, name string) (visit.Page, error) {
	start := time.Now()
	res, err := f.inner.Get(ctx, path, name)
	f.record(ctx, name, start, res, err)
	return res, err
}

func (f *recordingFetcher) Post(ctx context.Context, form visit.Form, name string) (visit.Page, error) {
	start := time.Now()
	res, err := f.inner.Post(ctx, form, name)
	f.record(ctx, name, start, res, err)
	return res, err
}
