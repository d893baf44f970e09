package descheduler

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/cloudtask/relocation/common/stats"
	"github.com/cloudtask/relocation/eviction"
	"github.com/cloudtask/relocation/jobs"
)

// Candidate is one task the ranking step proposes for relocation, in pass
// priority order. Immediate candidates have already been committed to (e.g.
// agent drain, self-inflicted remediation) and only need best-effort ledger
// accounting.
type Candidate struct {
	Task      *jobs.Task
	Job       *jobs.Job
	Immediate bool
	Reason    string
}

// RelocationPlan records one task selected for eviction in this pass. The
// actual eviction request is issued elsewhere.
type RelocationPlan struct {
	TaskID       string
	JobID        string
	Reason       string
	DecisionTime time.Time
}

// Descheduler runs the disruption-budget admission control of one planning
// pass. Construction snapshots quota; Plan filters candidates against it.
type Descheduler struct {
	tracker *EvictionQuotaTracker
	stat    stats.StatsReceiver
}

// NewDescheduler snapshots quota for the given job set. A nil stat receiver
// disables metrics. Eviction service failures are fatal to the pass and
// propagate to the caller's scheduling loop.
func NewDescheduler(ops eviction.Operations, jobsByID map[string]*jobs.Job, stat stats.StatsReceiver) (*Descheduler, error) {
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}
	tracker, err := NewEvictionQuotaTracker(ops, jobsByID)
	if err != nil {
		return nil, err
	}
	stat.Gauge(stats.DeschedulerSystemQuotaGauge).Update(tracker.SystemQuota())
	windowOpen := int64(0)
	if tracker.SystemDisruptionWindowOpen() {
		windowOpen = 1
	}
	stat.Gauge(stats.DeschedulerSystemWindowOpenGauge).Update(windowOpen)
	return &Descheduler{tracker: tracker, stat: stat}, nil
}

// Tracker exposes the pass's quota ledger; the pass must route all quota
// decisions through it rather than querying the eviction service directly.
func (d *Descheduler) Tracker() *EvictionQuotaTracker {
	return d.tracker
}

// Plan walks candidates in order and selects those the remaining budget
// admits. Immediate candidates are always selected, with best-effort
// accounting. A job whose own budget is exhausted is skipped for the rest of
// the pass; system exhaustion only skips the current candidate, since a later
// window-exempt job may still be admitted while the window is closed.
func (d *Descheduler) Plan(candidates []Candidate) []RelocationPlan {
	plans := []RelocationPlan{}
	exhaustedJobs := map[string]bool{}

	for _, c := range candidates {
		if c.Immediate {
			d.tracker.ConsumeNoError(c.Job.ID)
			d.stat.Counter(stats.DeschedulerImmediateRelocationCounter).Inc(1)
			plans = append(plans, RelocationPlan{
				TaskID: c.Task.ID, JobID: c.Job.ID, Reason: c.Reason, DecisionTime: time.Now(),
			})
			continue
		}
		if exhaustedJobs[c.Job.ID] {
			continue
		}

		err := d.tracker.Consume(c.Job.ID, c.Job.ExemptFromSystemDisruptionWindow())
		if err != nil {
			quotaErr := err.(*QuotaExhaustedError)
			d.stat.Counter(stats.DeschedulerQuotaDeniedCounter).Inc(1)
			log.Debugf("Not relocating task %s: %v", c.Task.ID, quotaErr)
			if quotaErr.Source != SystemQuotaSource {
				exhaustedJobs[c.Job.ID] = true
			}
			continue
		}

		d.stat.Counter(stats.DeschedulerQuotaConsumedCounter).Inc(1)
		plans = append(plans, RelocationPlan{
			TaskID: c.Task.ID, JobID: c.Job.ID, Reason: c.Reason, DecisionTime: time.Now(),
		})
	}

	d.stat.Gauge(stats.DeschedulerPlannedTasksGauge).Update(int64(len(plans)))
	log.Infof("Planned %d of %d relocation candidates. Remaining system quota: %d",
		len(plans), len(candidates), d.tracker.SystemQuota())
	return plans
}
