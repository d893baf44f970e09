package descheduler

import (
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/cloudtask/relocation/eviction"
	"github.com/cloudtask/relocation/jobs"
)

// Used to get proper logging from tests...
func init() {
	if loglevel := os.Getenv("RELOCATION_LOGLEVEL"); loglevel != "" {
		level, err := log.ParseLevel(loglevel)
		if err != nil {
			log.Error(err)
			return
		}
		log.SetLevel(level)
	} else {
		log.SetLevel(log.ErrorLevel)
	}
}

func makeJob(id string, policy jobs.DisruptionBudgetPolicy) *jobs.Job {
	return &jobs.Job{
		ID: id,
		Descriptor: jobs.JobDescriptor{
			ApplicationName:  "app-" + id,
			DisruptionBudget: jobs.DisruptionBudget{Policy: policy},
			Service:          &jobs.ServiceExt{Desired: 5, Min: 0, Max: 10},
		},
	}
}

func makeJobSet(ids ...string) map[string]*jobs.Job {
	jobsByID := map[string]*jobs.Job{}
	for _, id := range ids {
		jobsByID[id] = makeJob(id, jobs.PolicyAvailabilityPercentage)
	}
	return jobsByID
}

func makeOps(systemQuota int64, systemMessage string, jobQuotas map[string]int64) *eviction.InMemoryOperations {
	ops := eviction.NewInMemoryOperations()
	ops.SetSystemQuota(systemQuota, systemMessage)
	for id, quota := range jobQuotas {
		ops.SetJobQuota(id, quota)
	}
	return ops
}

func TestSnapshotReflectsServiceValues(t *testing.T) {
	// jobC is in the pass's job set but the service has no record for it.
	ops := makeOps(7, "", map[string]int64{"jobA": 2, "jobB": 0})
	tracker, err := NewEvictionQuotaTracker(ops, makeJobSet("jobA", "jobB", "jobC"))
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	if tracker.SystemQuota() != 7 {
		t.Errorf("expected system quota 7, got %d", tracker.SystemQuota())
	}
	if !tracker.SystemDisruptionWindowOpen() {
		t.Errorf("expected window open with nonzero system quota")
	}
	if quota := tracker.JobQuota("jobA"); quota != 2 {
		t.Errorf("expected jobA quota 2, got %d", quota)
	}
	if quota := tracker.JobQuota("jobB"); quota != 0 {
		t.Errorf("expected jobB quota 0, got %d", quota)
	}
	if quota := tracker.JobQuota("jobC"); quota != 0 {
		t.Errorf("expected jobC (no record) quota 0, got %d", quota)
	}
	if quota := tracker.JobQuota("neverSupplied"); quota != 0 {
		t.Errorf("expected unknown job quota 0, got %d", quota)
	}
}

func TestSystemWindowStateFromReason(t *testing.T) {
	tracker, err := NewEvictionQuotaTracker(makeOps(0, eviction.ReasonSystemWindowClosed, nil), makeJobSet())
	if err != nil {
		t.Fatal(err)
	}
	if tracker.SystemDisruptionWindowOpen() {
		t.Errorf("expected closed window for zero quota with the window-closed reason")
	}

	tracker, err = NewEvictionQuotaTracker(makeOps(0, eviction.ReasonSystemQuotaLimit, nil), makeJobSet())
	if err != nil {
		t.Fatal(err)
	}
	if !tracker.SystemDisruptionWindowOpen() {
		t.Errorf("expected open window for zero quota with any other reason")
	}

	tracker, err = NewEvictionQuotaTracker(makeOps(4, eviction.ReasonSystemWindowClosed, nil), makeJobSet())
	if err != nil {
		t.Fatal(err)
	}
	if !tracker.SystemDisruptionWindowOpen() {
		t.Errorf("expected open window for nonzero quota regardless of message")
	}
}

func TestConsumeDecrementsBothCounters(t *testing.T) {
	ops := makeOps(5, "", map[string]int64{"jobA": 2})
	tracker, _ := NewEvictionQuotaTracker(ops, makeJobSet("jobA"))

	if err := tracker.Consume("jobA", false); err != nil {
		t.Fatalf("unexpected consume error: %v", err)
	}
	if tracker.SystemQuota() != 4 || tracker.JobQuota("jobA") != 1 {
		t.Errorf("expected system=4 jobA=1, got system=%d jobA=%d", tracker.SystemQuota(), tracker.JobQuota("jobA"))
	}
}

func TestConsumeFailureIsAllOrNothing(t *testing.T) {
	ops := makeOps(5, "", map[string]int64{"jobA": 0})
	tracker, _ := NewEvictionQuotaTracker(ops, makeJobSet("jobA"))

	err := tracker.Consume("jobA", false)
	if err == nil {
		t.Fatal("expected job-budget rejection")
	}
	if err.(*QuotaExhaustedError).Source != JobQuotaSource {
		t.Errorf("expected job-budget kind, got %v", err.(*QuotaExhaustedError).Source)
	}
	if tracker.SystemQuota() != 5 || tracker.JobQuota("jobA") != 0 {
		t.Errorf("rejected consume must not change counters, got system=%d jobA=%d",
			tracker.SystemQuota(), tracker.JobQuota("jobA"))
	}
}

func TestConsumeUnknownJobFailsRegardlessOfSystemQuota(t *testing.T) {
	tracker, _ := NewEvictionQuotaTracker(makeOps(100, "", nil), makeJobSet())

	err := tracker.Consume("ghost", false)
	if err == nil {
		t.Fatal("expected unknown-job rejection")
	}
	if !IsQuotaExhausted(err) {
		t.Errorf("expected a quota-exhausted error, got %T", err)
	}
	if err.(*QuotaExhaustedError).Source != UnknownJobSource {
		t.Errorf("expected unknown-job kind, got %v", err.(*QuotaExhaustedError).Source)
	}
}

func TestExemptionDoesNotApplyWhileWindowOpen(t *testing.T) {
	// Zero system quota for ordinary exhaustion: the window is open, so the
	// exemption flag must not buy anything.
	ops := makeOps(0, eviction.ReasonSystemQuotaLimit, map[string]int64{"jobA": 3})
	tracker, _ := NewEvictionQuotaTracker(ops, makeJobSet("jobA"))

	err := tracker.Consume("jobA", true)
	if err == nil {
		t.Fatal("expected system rejection while window open")
	}
	if err.(*QuotaExhaustedError).Source != SystemQuotaSource {
		t.Errorf("expected system kind, got %v", err.(*QuotaExhaustedError).Source)
	}
}

func TestExemptionAppliesWhileWindowClosed(t *testing.T) {
	// Scenario: system quota 0 because the window is closed; job C has quota 3
	// and is exempt. Three consumptions succeed with the system counter parked
	// at zero, the fourth fails on the job's own budget.
	ops := makeOps(0, eviction.ReasonSystemWindowClosed, map[string]int64{"jobC": 3})
	tracker, _ := NewEvictionQuotaTracker(ops, makeJobSet("jobC"))

	for i := 0; i < 3; i++ {
		if err := tracker.Consume("jobC", true); err != nil {
			t.Fatalf("consume %d: unexpected error: %v", i+1, err)
		}
		if tracker.SystemQuota() != 0 {
			t.Errorf("consume %d: system quota must stay floored at 0, got %d", i+1, tracker.SystemQuota())
		}
	}
	if quota := tracker.JobQuota("jobC"); quota != 0 {
		t.Errorf("expected jobC quota 0 after three consumes, got %d", quota)
	}

	err := tracker.Consume("jobC", true)
	if err == nil {
		t.Fatal("expected job-budget rejection on fourth consume")
	}
	if err.(*QuotaExhaustedError).Source != JobQuotaSource {
		t.Errorf("expected job-budget kind, got %v", err.(*QuotaExhaustedError).Source)
	}

	// Without the exemption the same state rejects at the system level.
	err = tracker.Consume("jobC", false)
	if err == nil || err.(*QuotaExhaustedError).Source != SystemQuotaSource {
		t.Errorf("expected system kind without exemption, got %v", err)
	}
}

func TestTwoJobScenario(t *testing.T) {
	// Scenario: system quota 2, jobs A and B with quota 1 each, window open.
	ops := makeOps(2, "", map[string]int64{"jobA": 1, "jobB": 1})
	tracker, _ := NewEvictionQuotaTracker(ops, makeJobSet("jobA", "jobB"))

	if err := tracker.Consume("jobA", false); err != nil {
		t.Fatalf("first consume for jobA should succeed: %v", err)
	}
	if tracker.SystemQuota() != 1 || tracker.JobQuota("jobA") != 0 {
		t.Errorf("expected system=1 jobA=0, got system=%d jobA=%d", tracker.SystemQuota(), tracker.JobQuota("jobA"))
	}

	err := tracker.Consume("jobA", false)
	if err == nil || err.(*QuotaExhaustedError).Source != JobQuotaSource {
		t.Errorf("second consume for jobA should fail on job budget, got %v", err)
	}

	if err := tracker.Consume("jobB", false); err != nil {
		t.Fatalf("first consume for jobB should succeed: %v", err)
	}
	if tracker.SystemQuota() != 0 || tracker.JobQuota("jobB") != 0 {
		t.Errorf("expected system=0 jobB=0, got system=%d jobB=%d", tracker.SystemQuota(), tracker.JobQuota("jobB"))
	}

	err = tracker.Consume("jobB", false)
	if err == nil || err.(*QuotaExhaustedError).Source != SystemQuotaSource {
		t.Errorf("second consume for jobB should fail on system budget, got %v", err)
	}
}

func TestConsumeNoErrorFloorsAtZero(t *testing.T) {
	ops := makeOps(2, "", map[string]int64{"jobA": 1})
	tracker, _ := NewEvictionQuotaTracker(ops, makeJobSet("jobA"))

	for i := 0; i < 5; i++ {
		tracker.ConsumeNoError("jobA")
	}
	if tracker.SystemQuota() != 0 {
		t.Errorf("system quota should floor at 0, got %d", tracker.SystemQuota())
	}
	if tracker.JobQuota("jobA") != 0 {
		t.Errorf("job quota should floor at 0, got %d", tracker.JobQuota("jobA"))
	}

	// Unknown jobs are a no-op on the job side and create no entry.
	tracker.ConsumeNoError("ghost")
	if tracker.JobQuota("ghost") != 0 {
		t.Errorf("no entry should be created for unknown jobs")
	}
	err := tracker.Consume("ghost", false)
	if err == nil || err.(*QuotaExhaustedError).Source != UnknownJobSource {
		t.Errorf("ghost must still be rejected as unknown, got %v", err)
	}
}

func TestConstructionErrorPropagates(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	opsMock := eviction.NewMockOperations(mockCtrl)
	opsMock.EXPECT().GetEvictionQuota(eviction.SystemReference()).
		Return(eviction.Quota{}, errors.New("eviction service unreachable"))

	if _, err := NewEvictionQuotaTracker(opsMock, makeJobSet("jobA")); err == nil {
		t.Error("expected construction to fail when the system quota query fails")
	}
}

func TestConstructionJobQueryErrorPropagates(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	opsMock := eviction.NewMockOperations(mockCtrl)
	opsMock.EXPECT().GetEvictionQuota(eviction.SystemReference()).
		Return(eviction.Quota{Reference: eviction.SystemReference(), Quota: 5}, nil)
	opsMock.EXPECT().FindEvictionQuota(eviction.JobReference("jobA")).
		Return(eviction.Quota{}, false, errors.New("timeout"))

	if _, err := NewEvictionQuotaTracker(opsMock, makeJobSet("jobA")); err == nil {
		t.Error("expected construction to fail when a job quota query fails")
	}
}

func TestConstructionQueriesOncePerScope(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	opsMock := eviction.NewMockOperations(mockCtrl)
	opsMock.EXPECT().GetEvictionQuota(eviction.SystemReference()).
		Return(eviction.Quota{Reference: eviction.SystemReference(), Quota: 5}, nil)
	opsMock.EXPECT().FindEvictionQuota(eviction.JobReference("jobA")).
		Return(eviction.Quota{Reference: eviction.JobReference("jobA"), Quota: 1}, true, nil)
	opsMock.EXPECT().FindEvictionQuota(eviction.JobReference("jobB")).
		Return(eviction.Quota{}, false, nil)

	tracker, err := NewEvictionQuotaTracker(opsMock, makeJobSet("jobA", "jobB"))
	if err != nil {
		t.Fatalf("unexpected construction error: %v", err)
	}

	// All subsequent activity is served from the snapshot; the mock would
	// fail the test on any further service call.
	tracker.Consume("jobA", false)
	tracker.ConsumeNoError("jobB")
	tracker.JobQuota("jobA")
	tracker.SystemQuota()
}
