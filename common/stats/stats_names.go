package stats

/*
This file defines all the metrics being collected. As new metrics are added please follow this pattern.
*/

const (
	/************************* Descheduler metrics **************************/
	/*
		remaining system-wide eviction quota recorded at pass snapshot time
	*/
	DeschedulerSystemQuotaGauge = "systemEvictionQuotaGauge"

	/*
		whether the system disruption window was open at pass snapshot time (1 open, 0 closed)
	*/
	DeschedulerSystemWindowOpenGauge = "systemDisruptionWindowOpenGauge"

	/*
		number of quota consumptions granted during planning passes
	*/
	DeschedulerQuotaConsumedCounter = "quotaConsumedCounter"

	/*
		number of quota consumptions denied during planning passes
	*/
	DeschedulerQuotaDeniedCounter = "quotaDeniedCounter"

	/*
		number of immediate (forced) relocations planned, accounted best-effort
	*/
	DeschedulerImmediateRelocationCounter = "immediateRelocationCounter"

	/*
		number of tasks selected for relocation in the last planning pass
	*/
	DeschedulerPlannedTasksGauge = "plannedTasksGauge"

	/************************* Runner metrics **************************/
	/*
		number of planning passes that completed
	*/
	RunnerPassCounter = "passCounter"

	/*
		number of planning passes that failed (quota snapshot or job load errors)
	*/
	RunnerPassFailedCounter = "passFailedCounter"

	/*
		amount of time one planning pass takes, end to end
	*/
	RunnerPassLatency_ms = "passLatency_ms"
)
