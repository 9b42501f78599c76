package history

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"energy-agent/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Snapshot keeps the dataset read once at start-up and hands every request
// its own copy. A scheduled reload swaps in a fresh dataset; a failed reload
// keeps the previous one.
type Snapshot struct {
	loader Loader
	logger *logrus.Logger

	records  atomic.Pointer[[]models.HistoricalRecord]
	loadedAt atomic.Int64

	mutex sync.Mutex
	cron  *cron.Cron
}

func NewSnapshot(loader Loader, logger *logrus.Logger) *Snapshot {
	return &Snapshot{loader: loader, logger: logger}
}

// Refresh reads the dataset and replaces the current snapshot.
func (s *Snapshot) Refresh(ctx context.Context) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	records, err := s.loader.Load(ctx)
	if err != nil {
		return err
	}

	s.records.Store(&records)
	s.loadedAt.Store(time.Now().UnixNano())
	s.logger.Infof("History: snapshot refreshed with %d records", len(records))
	return nil
}

// Load returns the current snapshot, reading the dataset if nothing has been
// loaded yet.
func (s *Snapshot) Load(ctx context.Context) ([]models.HistoricalRecord, error) {
	if current := s.records.Load(); current != nil {
		return slices.Clone(*current), nil
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(*s.records.Load()), nil
}

func (s *Snapshot) LoadedAt() time.Time {
	ns := s.loadedAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Schedule reloads the dataset on a cron spec until ctx is done. An empty
// spec disables reloading.
func (s *Snapshot) Schedule(ctx context.Context, spec string) error {
	if spec == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warnf("History: scheduled reload failed, keeping previous snapshot: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", spec, err)
	}

	s.cron = c
	c.Start()
	s.logger.Infof("History: reload scheduled (%s)", spec)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Snapshot) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}
