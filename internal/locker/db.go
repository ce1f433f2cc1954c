package locker

import (
	"context"
	"time"

	"github.com/ranger-dev/ranger-agent/internal/repository"
)

// DBLocker backs leases with the relational lock table, using the unique
// index on the resource identifier for atomic check-and-set.
type DBLocker struct {
	locks *repository.LockRepository
}

func NewDBLocker(locks *repository.LockRepository) *DBLocker {
	return &DBLocker{locks}
}

func (d *DBLocker) Acquire(ctx context.Context, resourceID, holderID string, ttl time.Duration) (*Lease, error) {
	lock, err := d.locks.AcquireLock(resourceID, holderID, ttl)

	if err != nil {
		return nil, err
	}

	return &Lease{
		ResourceID: lock.ResourceID,
		HolderID:   lock.HolderID,
		ExpiresAt:  lock.ExpiresAt,
	}, nil
}

func (d *DBLocker) Release(ctx context.Context, lease *Lease) error {
	return d.locks.ReleaseLock(lease.ResourceID, lease.HolderID)
}
