package eviction

import (
	"sync"
)

// InMemoryOperations is an eviction service stub holding quotas in memory.
// Used by tests and by local/demo wiring in place of the real service.
type InMemoryOperations struct {
	mutex         sync.Mutex
	systemQuota   int64
	systemMessage string
	jobQuotas     map[string]int64
}

func NewInMemoryOperations() *InMemoryOperations {
	return &InMemoryOperations{
		jobQuotas: make(map[string]int64),
	}
}

// SetSystemQuota sets the fleet-wide quota and the message explaining it.
func (o *InMemoryOperations) SetSystemQuota(quota int64, message string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.systemQuota = quota
	o.systemMessage = message
}

// SetJobQuota sets the quota record for one job.
func (o *InMemoryOperations) SetJobQuota(jobID string, quota int64) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.jobQuotas[jobID] = quota
}

// DeleteJobQuota removes the quota record for one job, so subsequent finds
// report no record.
func (o *InMemoryOperations) DeleteJobQuota(jobID string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	delete(o.jobQuotas, jobID)
}

func (o *InMemoryOperations) GetEvictionQuota(ref Reference) (Quota, error) {
	quota, _, err := o.FindEvictionQuota(ref)
	return quota, err
}

func (o *InMemoryOperations) FindEvictionQuota(ref Reference) (Quota, bool, error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if ref.Level() == LevelSystem {
		return Quota{Reference: ref, Quota: o.systemQuota, Message: o.systemMessage}, true, nil
	}
	quota, ok := o.jobQuotas[ref.JobID()]
	if !ok {
		return Quota{}, false, nil
	}
	message := ""
	if quota == 0 {
		message = ReasonJobQuotaLimit
	}
	return Quota{Reference: ref, Quota: quota, Message: message}, true, nil
}
