package jobs

import (
	"fmt"
	"math/rand"
	"time"

	uuid "github.com/nu7hatch/gouuid"
)

// Test helpers that are useful for generating random jobs and tasks to
// exercise the descheduler and load tooling.

// NewRand returns a rand seeded with the current time.
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// GenJobID generates a valid random job id.
func GenJobID() string {
	id, _ := uuid.NewV4()
	return id.String()
}

var genPolicies = []DisruptionBudgetPolicy{
	PolicySelfManaged, PolicyAvailabilityPercentage, PolicyUnhealthyTasksLimit, PolicyRelocationLimit,
}

// GenJob generates a random service job with the given id, using the supplied Rand.
func GenJob(id string, rng *rand.Rand) *Job {
	desired := rng.Intn(10) + 1
	return &Job{
		ID: id,
		Descriptor: JobDescriptor{
			ApplicationName: fmt.Sprintf("app-%d", rng.Intn(1000)),
			Owner:           fmt.Sprintf("owner-%d@example.com", rng.Intn(100)),
			Attributes:      map[string]string{},
			DisruptionBudget: DisruptionBudget{
				Policy:          genPolicies[rng.Intn(len(genPolicies))],
				RatePerInterval: rng.Intn(5),
				RateInterval:    time.Hour,
			},
			Service: &ServiceExt{Desired: desired, Min: 0, Max: desired * 2},
		},
	}
}

// GenJobSet generates numJobs random jobs keyed by id.
func GenJobSet(numJobs int, rng *rand.Rand) map[string]*Job {
	jobsByID := make(map[string]*Job)
	for i := 0; i < numJobs; i++ {
		id := GenJobID()
		jobsByID[id] = GenJob(id, rng)
	}
	return jobsByID
}

// GenTasks generates numTasks started tasks for the given job.
func GenTasks(job *Job, numTasks int) []*Task {
	tasks := make([]*Task, 0, numTasks)
	for i := 0; i < numTasks; i++ {
		taskID, _ := uuid.NewV4()
		tasks = append(tasks, &Task{
			ID:      taskID.String(),
			JobID:   job.ID,
			AgentID: fmt.Sprintf("agent-%d", i),
			State:   TaskStarted,
		})
	}
	return tasks
}
