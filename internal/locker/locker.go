package locker

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/ranger-dev/ranger-agent/internal/envconf"
	"github.com/ranger-dev/ranger-agent/internal/repository"
)

// ErrLockBusy is returned by Acquire when another holder has a non-expired
// lease on the resource.
var ErrLockBusy = repository.ErrLockBusy

// Lease is a time-bounded exclusive claim on a resource identifier. The
// expiry is enforced by the store, so a lease may disappear underneath its
// holder; callers must tolerate that.
type Lease struct {
	ResourceID string
	HolderID   string
	ExpiresAt  time.Time
}

type Locker interface {
	Acquire(ctx context.Context, resourceID, holderID string, ttl time.Duration) (*Lease, error)
	Release(ctx context.Context, lease *Lease) error
}

// New selects the configured lease backend.
func New(conf *envconf.LockConf, repo *repository.Repository) (Locker, error) {
	switch conf.LockStoreKind {
	case "db":
		return NewDBLocker(repo.Lock), nil
	case "redis":
		return NewRedisLocker(goredis.NewClient(&goredis.Options{
			Addr:     conf.RedisAddr,
			Username: conf.RedisUsername,
			Password: conf.RedisPassword,
			DB:       conf.RedisDB,
		})), nil
	}

	return nil, fmt.Errorf("unknown lock store kind: %s", conf.LockStoreKind)
}
