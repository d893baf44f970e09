package jobs

import (
	"testing"
	"time"
)

func validBatchDescriptor() JobDescriptor {
	return JobDescriptor{
		ApplicationName: "encoder",
		Owner:           "media@example.com",
		Attributes:      map[string]string{},
		DisruptionBudget: DisruptionBudget{
			Policy: PolicyRelocationLimit,
		},
		Batch: &BatchExt{Size: 3, RuntimeLimit: time.Hour, RetryLimit: 2},
	}
}

func TestValidateBatchDescriptor(t *testing.T) {
	jd := validBatchDescriptor()
	if err := jd.Validate(); err != nil {
		t.Errorf("expected valid descriptor, got %v", err)
	}

	jd = validBatchDescriptor()
	jd.Batch.Size = 0
	if err := jd.Validate(); err == nil {
		t.Errorf("expected size validation error")
	}

	jd = validBatchDescriptor()
	jd.Batch.RuntimeLimit = time.Second
	if err := jd.Validate(); err == nil {
		t.Errorf("expected runtime limit validation error")
	}

	jd = validBatchDescriptor()
	jd.Batch = nil
	if err := jd.Validate(); err == nil {
		t.Errorf("expected error for descriptor with no ext")
	}
}

func TestValidateServiceDescriptor(t *testing.T) {
	jd := JobDescriptor{
		ApplicationName:  "api",
		DisruptionBudget: DisruptionBudget{Policy: PolicyAvailabilityPercentage},
		Service:          &ServiceExt{Desired: 5, Min: 2, Max: 10},
	}
	if err := jd.Validate(); err != nil {
		t.Errorf("expected valid descriptor, got %v", err)
	}

	jd.Service.Min = 7
	if err := jd.Validate(); err == nil {
		t.Errorf("expected min <= desired validation error")
	}
}

func TestExemptFromSystemDisruptionWindow(t *testing.T) {
	selfManaged := &Job{
		ID: "job1",
		Descriptor: JobDescriptor{
			DisruptionBudget: DisruptionBudget{Policy: PolicySelfManaged},
		},
	}
	if !selfManaged.ExemptFromSystemDisruptionWindow() {
		t.Errorf("self-managed jobs should be exempt from the system window")
	}

	plain := &Job{
		ID: "job2",
		Descriptor: JobDescriptor{
			DisruptionBudget: DisruptionBudget{Policy: PolicyAvailabilityPercentage},
		},
	}
	if plain.ExemptFromSystemDisruptionWindow() {
		t.Errorf("non-self-managed jobs should not be exempt by default")
	}

	optedIn := &Job{
		ID: "job3",
		Descriptor: JobDescriptor{
			Attributes:       map[string]string{AttrExemptFromSystemWindow: "true"},
			DisruptionBudget: DisruptionBudget{Policy: PolicyUnhealthyTasksLimit},
		},
	}
	if !optedIn.ExemptFromSystemDisruptionWindow() {
		t.Errorf("attribute opt-in should make a job exempt")
	}
}

func TestGenJobSet(t *testing.T) {
	rng := NewRand()
	jobsByID := GenJobSet(5, rng)
	if len(jobsByID) != 5 {
		t.Fatalf("expected 5 jobs, got %d", len(jobsByID))
	}
	for id, job := range jobsByID {
		if job.ID != id {
			t.Errorf("job keyed by %s has id %s", id, job.ID)
		}
		tasks := GenTasks(job, 3)
		if len(tasks) != 3 {
			t.Fatalf("expected 3 tasks, got %d", len(tasks))
		}
		for _, task := range tasks {
			if task.JobID != job.ID {
				t.Errorf("task %s not bound to job %s", task.ID, job.ID)
			}
		}
	}
}
