package eviction

//go:generate mockgen -source=operations.go -package=eviction -destination=eviction_mock.go

// Operations is the read-only surface of the eviction service consumed by the
// descheduler. Implementations may involve network I/O; callers treat the
// calls as blocking with no internal timeout or retry.
type Operations interface {
	// GetEvictionQuota returns the current quota for the given reference.
	// Returns an error if the quota cannot be determined.
	GetEvictionQuota(ref Reference) (Quota, error)

	// FindEvictionQuota returns the current quota for the given reference,
	// or false if the service has no quota record for it.
	// Returns an error only on service failure, never for an absent record.
	FindEvictionQuota(ref Reference) (Quota, bool, error)
}
