package repository

import (
	"errors"
	"time"

	"github.com/ranger-dev/ranger-agent/internal/models"
	"gorm.io/gorm"
)

// ErrLockBusy is returned when a non-expired lease already exists for the
// requested resource.
var ErrLockBusy = errors.New("resource lock busy")

type LockRepository struct {
	db *gorm.DB
}

func NewLockRepository(db *gorm.DB) *LockRepository {
	return &LockRepository{db}
}

// AcquireLock takes a lease on a resource for the given holder. Acquisition
// is check-and-set: an existing non-expired row means busy, an expired row is
// taken over, and two concurrent inserts are serialized by the unique index
// on resource_id.
func (r *LockRepository) AcquireLock(resourceID, holderID string, ttl time.Duration) (*models.ResourceLock, error) {
	now := time.Now()
	lock := &models.ResourceLock{
		ResourceID: resourceID,
		HolderID:   holderID,
		ExpiresAt:  now.Add(ttl),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		existing := &models.ResourceLock{}

		err := tx.Where("resource_id = ?", resourceID).First(existing).Error

		if err == nil {
			if !existing.Expired(now) {
				return ErrLockBusy
			}

			// take over the expired lease, guarding against a concurrent
			// takeover with the old expiry as a fencing condition
			res := tx.Model(&models.ResourceLock{}).
				Where("id = ? AND expires_at = ?", existing.ID, existing.ExpiresAt).
				Updates(map[string]interface{}{
					"holder_id":  holderID,
					"expires_at": lock.ExpiresAt,
				})

			if res.Error != nil {
				return res.Error
			}

			if res.RowsAffected == 0 {
				return ErrLockBusy
			}

			lock.ID = existing.ID
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(lock).Error; err != nil {
			// unique index violation: another holder inserted first
			return ErrLockBusy
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return lock, nil
}

// ReleaseLock removes a lease. Releasing a lease that has already expired and
// been taken over by another holder is a no-op.
func (r *LockRepository) ReleaseLock(resourceID, holderID string) error {
	return r.db.Unscoped().
		Where("resource_id = ? AND holder_id = ?", resourceID, holderID).
		Delete(&models.ResourceLock{}).Error
}

// PurgeExpired removes leases whose TTL has elapsed and returns how many
// rows were deleted.
func (r *LockRepository) PurgeExpired() (int64, error) {
	res := r.db.Unscoped().
		Where("expires_at <= ?", time.Now()).
		Delete(&models.ResourceLock{})

	return res.RowsAffected, res.Error
}
