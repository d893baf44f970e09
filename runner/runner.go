// Package runner drives relocation planning passes on a schedule. Each pass
// loads the current job set, snapshots eviction quota into a fresh
// descheduler, and hands the resulting relocation plans to the configured
// handler. Trackers are never reused across passes.
package runner

import (
	"time"

	"github.com/cenkalti/backoff"
	log "github.com/sirupsen/logrus"

	"github.com/cloudtask/relocation/common/stats"
	"github.com/cloudtask/relocation/descheduler"
	"github.com/cloudtask/relocation/eviction"
	"github.com/cloudtask/relocation/jobs"
)

// JobSource supplies the job set and the ordered relocation candidates for
// one planning pass.
type JobSource interface {
	// Jobs returns the jobs under consideration, keyed by id.
	Jobs() (map[string]*jobs.Job, error)

	// Candidates returns eviction candidates in pass priority order, drawn
	// from the given job set.
	Candidates(jobsByID map[string]*jobs.Job) []descheduler.Candidate
}

// PlanHandler receives the plans of one completed pass.
type PlanHandler func(plans []descheduler.RelocationPlan)

// Runner executes planning passes on a fixed interval. A failed pass (quota
// snapshot or job load error) is abandoned and retried with exponential
// backoff; a successful pass resets the backoff.
type Runner struct {
	ops      eviction.Operations
	source   JobSource
	handler  PlanHandler
	stat     stats.StatsReceiver
	interval time.Duration
	doneCh   chan struct{}
}

func NewRunner(ops eviction.Operations, source JobSource, handler PlanHandler, stat stats.StatsReceiver, interval time.Duration) *Runner {
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}
	if handler == nil {
		handler = func([]descheduler.RelocationPlan) {}
	}
	return &Runner{
		ops:      ops,
		source:   source,
		handler:  handler,
		stat:     stat,
		interval: interval,
		doneCh:   make(chan struct{}),
	}
}

// Start runs the pass loop until Stop is called.
func (r *Runner) Start() {
	go r.loop()
}

// Stop ends the pass loop. Safe to call once.
func (r *Runner) Stop() {
	close(r.doneCh)
}

func (r *Runner) loop() {
	log.Infof("Starting relocation pass loop, interval %s", r.interval)
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.interval
	b.MaxElapsedTime = 0 // retry forever; the job is periodic by nature

	wait := r.interval
	for {
		select {
		case <-r.doneCh:
			log.Info("Stopping relocation pass loop")
			return
		case <-time.After(wait):
			if err := r.RunPass(); err != nil {
				log.Errorf("Relocation pass failed: %v", err)
				r.stat.Counter(stats.RunnerPassFailedCounter).Inc(1)
				wait = b.NextBackOff()
			} else {
				b.Reset()
				wait = r.interval
			}
		}
	}
}

// RunPass executes one planning pass synchronously. Any error means the pass
// made no eviction decisions at all; the caller (or the loop) owns retry.
func (r *Runner) RunPass() error {
	defer r.stat.Latency(stats.RunnerPassLatency_ms).Time().Stop()

	jobsByID, err := r.source.Jobs()
	if err != nil {
		return err
	}

	d, err := descheduler.NewDescheduler(r.ops, jobsByID, r.stat.Scope("descheduler"))
	if err != nil {
		return err
	}

	plans := d.Plan(r.source.Candidates(jobsByID))
	r.stat.Counter(stats.RunnerPassCounter).Inc(1)
	r.handler(plans)
	return nil
}

// staticJobSource serves a fixed job set and candidate list on every pass.
type staticJobSource struct {
	jobsByID   map[string]*jobs.Job
	candidates []descheduler.Candidate
}

// NewStaticJobSource makes a JobSource over a fixed job set, for tests and
// local/demo runs.
func NewStaticJobSource(jobsByID map[string]*jobs.Job, candidates []descheduler.Candidate) JobSource {
	if jobsByID == nil {
		jobsByID = map[string]*jobs.Job{}
	}
	return &staticJobSource{jobsByID: jobsByID, candidates: candidates}
}

func (s *staticJobSource) Jobs() (map[string]*jobs.Job, error) {
	return s.jobsByID, nil
}

func (s *staticJobSource) Candidates(jobsByID map[string]*jobs.Job) []descheduler.Candidate {
	return s.candidates
}
