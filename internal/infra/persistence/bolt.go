package persistence

import (
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mxflights/flightwatch/internal/domain"
)

var bucketRecords = []byte("records")

// BoltStore is the default snapshot backend: one file, one bucket, one JSON
// value per record. SaveAll rewrites the bucket in a single transaction so a
// reader never observes a partial snapshot.
type BoltStore struct {
	db *bolt.DB
}

func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucketRecords)
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) LoadAll(_ context.Context) (map[string]domain.FlightRecord, error) {
	records := make(map[string]domain.FlightRecord)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRecords)
		return b.ForEach(func(k, v []byte) error {
			var record domain.FlightRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			records[record.ID] = record
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *BoltStore) SaveAll(_ context.Context, records map[string]domain.FlightRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketRecords); err != nil {
			return err
		}
		b, err := tx.CreateBucket(bucketRecords)
		if err != nil {
			return err
		}
		for id, record := range records {
			value, err := json.Marshal(record)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(id), value); err != nil {
				return err
			}
		}
		return nil
	})
}
