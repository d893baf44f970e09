package runner

import (
	"encoding/json"
	"io/ioutil"
	"time"

	"github.com/pkg/errors"

	"github.com/cloudtask/relocation/descheduler"
	"github.com/cloudtask/relocation/jobs"
)

// JSON shape of a static job-set file, used by local/demo runs in place of a
// live job manager feed.
type jobsFile struct {
	Jobs       []jobFileEntry       `json:"Jobs"`
	Candidates []candidateFileEntry `json:"Candidates"`
}

type jobFileEntry struct {
	ID                     string            `json:"Id"`
	ApplicationName        string            `json:"ApplicationName"`
	DisruptionBudgetPolicy string            `json:"DisruptionBudgetPolicy"`
	Attributes             map[string]string `json:"Attributes"`
	Tasks                  []taskFileEntry   `json:"Tasks"`
}

type taskFileEntry struct {
	ID      string `json:"Id"`
	AgentID string `json:"AgentId"`
}

type candidateFileEntry struct {
	TaskID    string `json:"TaskId"`
	Immediate bool   `json:"Immediate"`
	Reason    string `json:"Reason"`
}

// LoadJobsFile reads a static job set and its relocation candidates from
// path. Candidates reference tasks by id and keep file order, which is the
// pass's priority order.
func LoadJobsFile(path string) (JobSource, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading jobs file %s", path)
	}
	var file jobsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrapf(err, "parsing jobs file %s", path)
	}

	jobsByID := map[string]*jobs.Job{}
	tasksByID := map[string]*jobs.Task{}
	for _, entry := range file.Jobs {
		job := &jobs.Job{
			ID: entry.ID,
			Descriptor: jobs.JobDescriptor{
				ApplicationName: entry.ApplicationName,
				Attributes:      entry.Attributes,
				DisruptionBudget: jobs.DisruptionBudget{
					Policy:       jobs.DisruptionBudgetPolicy(entry.DisruptionBudgetPolicy),
					RateInterval: time.Hour,
				},
				Service: &jobs.ServiceExt{Desired: len(entry.Tasks), Max: len(entry.Tasks)},
			},
		}
		jobsByID[job.ID] = job
		for _, taskEntry := range entry.Tasks {
			tasksByID[taskEntry.ID] = &jobs.Task{
				ID:      taskEntry.ID,
				JobID:   job.ID,
				AgentID: taskEntry.AgentID,
				State:   jobs.TaskStarted,
			}
		}
	}

	candidates := make([]descheduler.Candidate, 0, len(file.Candidates))
	for _, entry := range file.Candidates {
		task, ok := tasksByID[entry.TaskID]
		if !ok {
			return nil, errors.Errorf("jobs file %s: candidate references unknown task %s", path, entry.TaskID)
		}
		candidates = append(candidates, descheduler.Candidate{
			Task:      task,
			Job:       jobsByID[task.JobID],
			Immediate: entry.Immediate,
			Reason:    entry.Reason,
		})
	}
	return NewStaticJobSource(jobsByID, candidates), nil
}
