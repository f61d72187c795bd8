package store

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mxflights/flightwatch/internal/domain"
)

// PriceUpdate is the result of applying one quote to a record. It carries the
// pre-update price alongside the post-update record so alert evaluation can
// run without a second read.
type PriceUpdate struct {
	Record   domain.FlightRecord
	OldPrice *decimal.Decimal
	NewPrice decimal.Decimal
}

// Store is the in-memory repository of monitored flights. The map shape is
// guarded by mu; price mutations on a single record are additionally
// serialized by a per-record mutex so concurrent refreshes of the same id
// cannot interleave their read-modify-write, while distinct records update in
// parallel.
type Store struct {
	mu      sync.RWMutex
	records map[string]domain.FlightRecord
	locks   map[string]*sync.Mutex
}

func New() *Store {
	return &Store{
		records: make(map[string]domain.FlightRecord),
		locks:   make(map[string]*sync.Mutex),
	}
}

func (s *Store) Add(record domain.FlightRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.records[record.ID] = record.Clone()
	return nil
}

func (s *Store) Get(id string) (domain.FlightRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return domain.FlightRecord{}, domain.ErrNotFound
	}
	return record.Clone(), nil
}

func (s *Store) ListByOwner(ownerID int64) []domain.FlightRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.FlightRecord
	for _, record := range s.records {
		if record.OwnerID == ownerID {
			out = append(out, record.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Store) Remove(id string, requesterID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	if record.OwnerID != requesterID {
		return domain.ErrForbidden
	}
	delete(s.records, id)
	delete(s.locks, id)
	return nil
}

func (s *Store) SetThreshold(id string, requesterID int64, value decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return domain.ErrNotFound
	}
	if record.OwnerID != requesterID {
		return domain.ErrForbidden
	}
	v := value
	record.AlertThreshold = &v
	s.records[id] = record
	return nil
}

// ApplyPriceUpdate is the single mutation point for price-related state. The
// per-record lock is held across the whole read-modify-write; min and max only
// ever widen and CheckCount increments exactly once per call.
//
// The per-record lock keeps same-id updaters out, but Remove and SetThreshold
// only hold mu, so the commit re-validates against the current map entry: a
// record deleted while the update was in flight stays deleted, and a threshold
// set in that window is carried over instead of being overwritten by the
// stale copy.
func (s *Store) ApplyPriceUpdate(id string, price decimal.Decimal, at time.Time) (PriceUpdate, error) {
	lock, err := s.recordLock(id)
	if err != nil {
		return PriceUpdate{}, err
	}
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	record, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		// Removed between lock acquisition and read.
		return PriceUpdate{}, domain.ErrNotFound
	}

	old := record.LastPrice
	p := price
	record.LastPrice = &p
	record.CheckCount++
	record.LastCheckedAt = at

	if old == nil {
		record.MinPrice = &p
		record.MaxPrice = &p
	} else {
		if record.MinPrice == nil || price.LessThan(*record.MinPrice) {
			record.MinPrice = &p
		}
		if record.MaxPrice == nil || price.GreaterThan(*record.MaxPrice) {
			record.MaxPrice = &p
		}
	}

	s.mu.Lock()
	current, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return PriceUpdate{}, domain.ErrNotFound
	}
	record.AlertThreshold = current.AlertThreshold
	s.records[id] = record
	s.mu.Unlock()

	return PriceUpdate{Record: record.Clone(), OldPrice: old, NewPrice: price}, nil
}

// Snapshot returns a deep copy of the full record set for persistence.
func (s *Store) Snapshot() map[string]domain.FlightRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.FlightRecord, len(s.records))
	for id, record := range s.records {
		out[id] = record.Clone()
	}
	return out
}

// ReplaceAll seeds the store from a loaded snapshot. Used at startup only.
func (s *Store) ReplaceAll(records map[string]domain.FlightRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]domain.FlightRecord, len(records))
	s.locks = make(map[string]*sync.Mutex)
	for id, record := range records {
		s.records[id] = record.Clone()
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Store) recordLock(id string) (*sync.Mutex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return nil, domain.ErrNotFound
	}
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock, nil
}
