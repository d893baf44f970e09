// Package jobs provides definitions for relocation Jobs and Tasks
package jobs

import (
	"fmt"
	"time"
)

// Batch jobs shorter than this are rejected outright.
const RuntimeLimitMin = 5 * time.Second

// DisruptionBudgetPolicy names the operator-configured policy that bounds how
// a job's tasks may be disrupted.
type DisruptionBudgetPolicy string

const (
	// The job owner relocates their own tasks within RelocationTimeBudget.
	PolicySelfManaged DisruptionBudgetPolicy = "selfManaged"

	// A percentage of the job's tasks must stay available.
	PolicyAvailabilityPercentage DisruptionBudgetPolicy = "availabilityPercentage"

	// At most N tasks of the job may be unhealthy at once.
	PolicyUnhealthyTasksLimit DisruptionBudgetPolicy = "unhealthyTasksLimit"

	// At most N relocations of the job's tasks per task lifetime.
	PolicyRelocationLimit DisruptionBudgetPolicy = "relocationLimit"
)

// Jobs can opt out of the system disruption window with this attribute even if
// their budget policy is not self-managed.
const AttrExemptFromSystemWindow = "relocation.exemptFromSystemDisruptionWindow"

// DisruptionBudget bounds forced relocations of a job's tasks.
type DisruptionBudget struct {
	Policy               DisruptionBudgetPolicy
	RatePerInterval      int           // evictions allowed per RateInterval; 0 means no rate limit beyond quota
	RateInterval         time.Duration
	RelocationTimeBudget time.Duration // self-managed only: how long the owner has to move a task
}

func (b DisruptionBudget) String() string {
	return fmt.Sprintf("policy:%s, rate:%d/%s, timeBudget:%s", b.Policy, b.RatePerInterval, b.RateInterval, b.RelocationTimeBudget)
}

// BatchExt holds the batch-specific part of a job descriptor.
type BatchExt struct {
	Size                int
	RuntimeLimit        time.Duration
	RetryLimit          int
	RetryOnRuntimeLimit bool
}

// ServiceExt holds the service-specific part of a job descriptor.
type ServiceExt struct {
	Desired int
	Min     int
	Max     int
}

// JobDescriptor is the definition the job owner submitted. Exactly one of
// Batch or Service is set.
type JobDescriptor struct {
	ApplicationName  string
	Owner            string
	Attributes       map[string]string
	DisruptionBudget DisruptionBudget
	Batch            *BatchExt
	Service          *ServiceExt
}

func (jd *JobDescriptor) String() string {
	kind := "service"
	size := 0
	if jd.Batch != nil {
		kind = "batch"
		size = jd.Batch.Size
	} else if jd.Service != nil {
		size = jd.Service.Desired
	}
	return fmt.Sprintf("app:%s, owner:%s, kind:%s, size:%d, budget:{%s}", jd.ApplicationName, jd.Owner, kind, size, jd.DisruptionBudget)
}

// Validate rejects descriptors the orchestrator would never accept.
func (jd *JobDescriptor) Validate() error {
	if jd.Batch != nil && jd.Service != nil {
		return fmt.Errorf("job descriptor cannot be both batch and service: %s", jd)
	}
	if jd.Batch == nil && jd.Service == nil {
		return fmt.Errorf("job descriptor must be batch or service: %s", jd)
	}
	if jd.Batch != nil {
		if jd.Batch.Size < 1 {
			return fmt.Errorf("batch job must have at least one task: %s", jd)
		}
		if jd.Batch.RuntimeLimit < RuntimeLimitMin {
			return fmt.Errorf("runtime limit too low (must be at least %s, but is %s)", RuntimeLimitMin, jd.Batch.RuntimeLimit)
		}
	}
	if jd.Service != nil && (jd.Service.Min > jd.Service.Desired || jd.Service.Desired > jd.Service.Max) {
		return fmt.Errorf("service job sizes must satisfy min <= desired <= max: %s", jd)
	}
	return nil
}

// Job is a running job known to the relocation pass.
type Job struct {
	ID         string
	Descriptor JobDescriptor
}

// ExemptFromSystemDisruptionWindow reports whether this job's tasks may be
// relocated while the system disruption window is closed. Self-managed jobs
// are always exempt since their owners already gate disruptions; other jobs
// can opt in via attribute.
func (j *Job) ExemptFromSystemDisruptionWindow() bool {
	if j.Descriptor.DisruptionBudget.Policy == PolicySelfManaged {
		return true
	}
	return j.Descriptor.Attributes[AttrExemptFromSystemWindow] == "true"
}

// TaskState is the lifecycle state of a single task.
type TaskState string

const (
	TaskAccepted      TaskState = "Accepted"
	TaskStarted       TaskState = "Started"
	TaskKillInitiated TaskState = "KillInitiated"
	TaskFinished      TaskState = "Finished"
)

// Task is one running task of a Job.
type Task struct {
	ID      string
	JobID   string
	AgentID string
	State   TaskState
}

func (t *Task) String() string {
	return fmt.Sprintf("task:%s, job:%s, agent:%s, state:%s", t.ID, t.JobID, t.AgentID, t.State)
}
