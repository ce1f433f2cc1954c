package models

import (
	"time"

	"gorm.io/gorm"
)

// ResourceLock is a short-lived exclusive lease on an infrastructure
// resource. The unique index on ResourceID is what makes acquisition a
// check-and-set at the store: a second acquirer cannot insert a row for the
// same resource.
type ResourceLock struct {
	gorm.Model

	ResourceID string `gorm:"unique"`
	HolderID   string
	ExpiresAt  time.Time
}

func (l *ResourceLock) Expired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}
