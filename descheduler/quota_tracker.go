package descheduler

import (
	log "github.com/sirupsen/logrus"

	"github.com/cloudtask/relocation/eviction"
	"github.com/cloudtask/relocation/jobs"
)

// EvictionQuotaTracker is the in-memory disruption-budget ledger for one
// planning pass. It snapshots the eviction service once at construction and
// then answers quota queries and consumptions purely from the snapshot; it
// never re-contacts the service. Budget debits against the real service happen
// only when the eviction request is issued, outside this tracker.
//
// A tracker belongs to a single pass on a single goroutine. Concurrent passes
// must each construct their own.
type EvictionQuotaTracker struct {
	systemQuota                int64
	systemDisruptionWindowOpen bool
	jobQuotas                  map[string]int64
}

// NewEvictionQuotaTracker snapshots the system-scope quota plus one job-scope
// quota per job in jobsByID. A job with no quota record is tracked with quota
// zero; jobs absent from jobsByID are never tracked at all. Any service error
// is fatal to the pass and returned as-is.
func NewEvictionQuotaTracker(ops eviction.Operations, jobsByID map[string]*jobs.Job) (*EvictionQuotaTracker, error) {
	systemQuota, err := ops.GetEvictionQuota(eviction.SystemReference())
	if err != nil {
		return nil, err
	}

	t := &EvictionQuotaTracker{
		systemQuota:                systemQuota.Quota,
		systemDisruptionWindowOpen: true,
		jobQuotas:                  make(map[string]int64),
	}
	// A zero system quota with any other message is ordinary exhaustion; a
	// nonzero quota is only grantable while the window permits it, so the
	// window is open in both cases.
	if t.systemQuota == 0 && systemQuota.Message == eviction.ReasonSystemWindowClosed {
		t.systemDisruptionWindowOpen = false
	}
	log.Debugf("System eviction quota %d. System disruption window open? %t", t.systemQuota, t.systemDisruptionWindowOpen)

	for id := range jobsByID {
		quota, ok, err := ops.FindEvictionQuota(eviction.JobReference(id))
		if err != nil {
			return nil, err
		}
		var jobQuota int64
		if ok {
			jobQuota = quota.Quota
		}
		log.Debugf("Job %s eviction quota %d", id, jobQuota)
		t.jobQuotas[id] = jobQuota
	}
	return t, nil
}

// SystemQuota returns the remaining fleet-wide budget for this pass.
func (t *EvictionQuotaTracker) SystemQuota() int64 {
	return t.systemQuota
}

// SystemDisruptionWindowOpen reports whether the global disruption time-window
// permitted evictions at snapshot time.
func (t *EvictionQuotaTracker) SystemDisruptionWindowOpen() bool {
	return t.systemDisruptionWindowOpen
}

// JobQuota returns the remaining budget for the given job, or 0 for any job
// not tracked by this pass.
func (t *EvictionQuotaTracker) JobQuota(jobID string) int64 {
	return t.jobQuotas[jobID]
}

type consumeOutcome int

const (
	consumeOK consumeOutcome = iota
	consumeSystemExhausted
	consumeUnknownJob
	consumeJobExhausted
)

// decideConsume applies the budget checks in order without mutating anything.
// A job exempt from the system window may pass the system check while the
// window is closed: the zero system quota is then attributed to the window,
// not to budget exhaustion. An exempt job gets no such escape hatch while the
// window is open.
func decideConsume(systemQuota int64, windowOpen bool, jobQuota int64, jobKnown bool, exempt bool) consumeOutcome {
	if systemQuota <= 0 {
		if windowOpen || !exempt {
			return consumeSystemExhausted
		}
	}
	if !jobKnown {
		return consumeUnknownJob
	}
	if jobQuota <= 0 {
		return consumeJobExhausted
	}
	return consumeOK
}

// Consume reserves one unit of budget for an eviction of a task of the given
// job, decrementing the system and job counters together. The checks and the
// decrement are all-or-nothing: a rejected consumption changes nothing.
// Returns a *QuotaExhaustedError on rejection.
func (t *EvictionQuotaTracker) Consume(jobID string, exemptFromSystemWindow bool) error {
	jobQuota, jobKnown := t.jobQuotas[jobID]
	switch decideConsume(t.systemQuota, t.systemDisruptionWindowOpen, jobQuota, jobKnown, exemptFromSystemWindow) {
	case consumeSystemExhausted:
		return noQuotaLeft(SystemQuotaSource, "system quota is empty")
	case consumeUnknownJob:
		return noQuotaLeft(UnknownJobSource, "attempt to use quota for unknown job: jobId=%s", jobID)
	case consumeJobExhausted:
		return noQuotaLeft(JobQuotaSource, "job quota is empty: jobId=%s", jobID)
	}
	// The system counter floors at zero: on the window-exemption path it is
	// already exhausted and stays there.
	if t.systemQuota > 0 {
		t.systemQuota--
	}
	t.jobQuotas[jobID] = jobQuota - 1
	return nil
}

// ConsumeNoError is an alternative to Consume that cannot fail, used when an
// immediate relocation is required and will proceed regardless of remaining
// budget. Both counters are decremented best-effort, flooring at zero, so the
// ledger stays approximately accurate for the rest of the pass. An unknown
// job is a no-op on the job side.
func (t *EvictionQuotaTracker) ConsumeNoError(jobID string) {
	if t.systemQuota > 0 {
		t.systemQuota--
	}
	if jobQuota, ok := t.jobQuotas[jobID]; ok && jobQuota > 0 {
		t.jobQuotas[jobID] = jobQuota - 1
	}
}
