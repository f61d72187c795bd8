package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mxflights/flightwatch/internal/domain"
	"github.com/mxflights/flightwatch/internal/infra/metrics"
	"github.com/mxflights/flightwatch/internal/store"
)

// Persister serializes snapshot writes so two concurrent savers can never
// produce a torn snapshot in the backend.
type Persister struct {
	mu      sync.Mutex
	backend domain.SnapshotStore
	records *store.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewPersister(backend domain.SnapshotStore, records *store.Store, logger *zap.Logger, m *metrics.Metrics) *Persister {
	return &Persister{backend: backend, records: records, logger: logger, metrics: m}
}

func (p *Persister) Save(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.backend.SaveAll(ctx, p.records.Snapshot()); err != nil {
		p.logger.Error("snapshot save failed", zap.Error(err))
		if p.metrics != nil {
			p.metrics.PersistenceErrors.Inc()
		}
		return err
	}
	return nil
}
