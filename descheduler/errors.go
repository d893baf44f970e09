package descheduler

import "fmt"

// QuotaSource identifies which budget level rejected a strict consumption.
type QuotaSource int

const (
	SystemQuotaSource QuotaSource = iota
	UnknownJobSource
	JobQuotaSource
)

func (s QuotaSource) String() string {
	switch s {
	case SystemQuotaSource:
		return "system"
	case UnknownJobSource:
		return "unknownJob"
	case JobQuotaSource:
		return "job"
	}
	return "unknown"
}

// QuotaExhaustedError is returned by EvictionQuotaTracker.Consume when a
// candidate cannot be granted quota. It is a routine control-flow signal for
// the planning pass, not a failure of the pass itself; callers branch on
// Source, the message is for logs.
type QuotaExhaustedError struct {
	Source QuotaSource
	msg    string
}

func (e *QuotaExhaustedError) Error() string { return e.msg }

func noQuotaLeft(source QuotaSource, format string, args ...interface{}) *QuotaExhaustedError {
	return &QuotaExhaustedError{Source: source, msg: fmt.Sprintf(format, args...)}
}

// IsQuotaExhausted reports whether err is a quota-exhaustion signal.
func IsQuotaExhausted(err error) bool {
	_, ok := err.(*QuotaExhaustedError)
	return ok
}
