// Package eviction defines the read-only boundary to the eviction service,
// the authority on disruption-budget quota. The descheduler snapshots quota
// through this boundary once per planning pass; actual budget debits happen
// only when the real eviction request is issued, outside this package.
package eviction

import "fmt"

// Level scopes a quota reference.
type Level int

const (
	LevelSystem Level = iota
	LevelJob
)

func (l Level) String() string {
	if l == LevelSystem {
		return "system"
	}
	return "job"
}

// Reference addresses one quota scope: the whole system or a single job.
type Reference struct {
	level Level
	jobID string
}

// SystemReference addresses the fleet-wide quota.
func SystemReference() Reference {
	return Reference{level: LevelSystem}
}

// JobReference addresses the quota of one job.
func JobReference(jobID string) Reference {
	return Reference{level: LevelJob, jobID: jobID}
}

func (r Reference) Level() Level  { return r.level }
func (r Reference) JobID() string { return r.jobID }

func (r Reference) String() string {
	if r.level == LevelSystem {
		return "system"
	}
	return fmt.Sprintf("job/%s", r.jobID)
}

// Quota is the remaining permitted disruptions for a scope, with a
// human-readable message explaining a zero value.
type Quota struct {
	Reference Reference
	Quota     int64
	Message   string
}

func (q Quota) String() string {
	return fmt.Sprintf("ref:%s, quota:%d, message:%q", q.Reference, q.Quota, q.Message)
}

// Rejection-reason vocabulary used in Quota.Message when quota is zero. The
// descheduler matches ReasonSystemWindowClosed literally; all other messages
// are treated as ordinary budget exhaustion.
const (
	ReasonSystemWindowClosed = "system disruption window is closed"
	ReasonSystemQuotaLimit   = "system eviction quota limit reached"
	ReasonJobQuotaLimit      = "job eviction quota limit reached"
	ReasonRateLimit          = "eviction rate limit reached"
)
