package runbook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ranger-dev/ranger-agent/internal/logger"
	"gopkg.in/yaml.v3"
)

// ErrNoMatchingRunbook means no runbook in the catalog qualifies for an
// alarm. This is a terminal planning outcome, not a failure.
var ErrNoMatchingRunbook = errors.New("no matching runbook")

// Catalog holds the loaded runbooks in file load order. Matching takes a
// read lock, so a concurrent reload never mutates a catalog mid-match.
type Catalog struct {
	dir    string
	logger *logger.Logger

	mu       sync.RWMutex
	runbooks []*Runbook
}

func NewCatalog(dir string, l *logger.Logger) *Catalog {
	return &Catalog{
		dir:    dir,
		logger: l,
	}
}

// Load walks the catalog directory and replaces the runbook set with the
// parsed contents of every .yaml/.yml file. Files that fail to parse or
// validate are logged and skipped; catalog ordering is the walk order, which
// is deterministic for a fixed directory tree.
func (c *Catalog) Load() error {
	var loaded []*Runbook

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return fmt.Errorf("runbook directory does not exist: %s", c.dir)
	}

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)

		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		rb, err := loadFile(path)

		if err != nil {
			c.logger.Warn().Caller().Msgf("skipping runbook %s: %v", path, err)
			return nil
		}

		loaded = append(loaded, rb)
		return nil
	})

	if err != nil {
		return fmt.Errorf("could not walk runbook directory: %w", err)
	}

	c.mu.Lock()
	c.runbooks = loaded
	c.mu.Unlock()

	c.logger.Info().Caller().Msgf("loaded %d runbooks from %s", len(loaded), c.dir)

	return nil
}

func loadFile(path string) (*Runbook, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	rb := &Runbook{}

	if err := yaml.Unmarshal(data, rb); err != nil {
		return nil, err
	}

	if err := rb.Validate(); err != nil {
		return nil, err
	}

	return rb, nil
}

// Match returns the first runbook whose criteria are all satisfied, in
// catalog order. First-match-wins: ordering is a deployment concern.
func (c *Catalog) Match(alarmName, namespace string) (*Runbook, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, rb := range c.runbooks {
		if rb.Matches(alarmName, namespace) {
			return rb, nil
		}
	}

	return nil, ErrNoMatchingRunbook
}

// Runbooks returns a snapshot of the catalog.
func (c *Catalog) Runbooks() []*Runbook {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make([]*Runbook, len(c.runbooks))
	copy(snapshot, c.runbooks)

	return snapshot
}

// Watch reloads the catalog when files under the directory change. It blocks
// until the context is cancelled. Writes arrive in bursts, so reloads are
// debounced with a short timer.
func (c *Catalog) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()

	if err != nil {
		return err
	}

	defer watcher.Close()

	if err := watcher.Add(c.dir); err != nil {
		return err
	}

	var debounce *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}

			debounce = time.AfterFunc(500*time.Millisecond, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			c.logger.Error().Caller().Msgf("runbook watcher error: %v", err)
		case <-reload:
			if err := c.Load(); err != nil {
				c.logger.Error().Caller().Msgf("runbook reload failed: %v", err)
			}
		}
	}
}
