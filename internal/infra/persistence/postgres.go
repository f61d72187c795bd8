package persistence

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mxflights/flightwatch/internal/domain"
)

type recordModel struct {
	ID             string `gorm:"primaryKey"`
	Origin         string `gorm:"not null"`
	Dest           string `gorm:"not null"`
	Date           string `gorm:"not null"`
	OwnerID        int64  `gorm:"index;not null"`
	NotifyTarget   int64  `gorm:"not null"`
	LastPrice      *string
	MinPrice       *string
	MaxPrice       *string
	AlertThreshold *string
	CheckCount     int64
	CreatedAt      time.Time
	LastCheckedAt  time.Time
}

func (recordModel) TableName() string { return "flight_records" }

type gormZapWriter struct {
	logger *zap.Logger
}

func (w gormZapWriter) Printf(format string, args ...interface{}) {
	w.logger.Sugar().Infof(format, args...)
}

// PostgresStore keeps the snapshot in a single table. SaveAll runs as one
// transaction (truncate then batch insert) to preserve whole-snapshot
// semantics.
type PostgresStore struct {
	db *gorm.DB
}

func OpenPostgres(dsn string, log *zap.Logger) (*PostgresStore, error) {
	gormLogger := logger.New(
		gormZapWriter{logger: log},
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&recordModel{}); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *PostgresStore) LoadAll(ctx context.Context) (map[string]domain.FlightRecord, error) {
	var models []recordModel
	if err := s.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	records := make(map[string]domain.FlightRecord, len(models))
	for _, model := range models {
		record, err := mapRecordToDomain(model)
		if err != nil {
			return nil, err
		}
		records[record.ID] = record
	}
	return records, nil
}

func (s *PostgresStore) SaveAll(ctx context.Context, records map[string]domain.FlightRecord) error {
	models := make([]recordModel, 0, len(records))
	for _, record := range records {
		models = append(models, mapRecordToModel(record))
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&recordModel{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		return tx.CreateInBatches(models, 100).Error
	})
}

func mapRecordToModel(record domain.FlightRecord) recordModel {
	return recordModel{
		ID:             record.ID,
		Origin:         record.Origin,
		Dest:           record.Dest,
		Date:           record.Date,
		OwnerID:        record.OwnerID,
		NotifyTarget:   record.NotifyTarget,
		LastPrice:      decimalToString(record.LastPrice),
		MinPrice:       decimalToString(record.MinPrice),
		MaxPrice:       decimalToString(record.MaxPrice),
		AlertThreshold: decimalToString(record.AlertThreshold),
		CheckCount:     record.CheckCount,
		CreatedAt:      record.CreatedAt,
		LastCheckedAt:  record.LastCheckedAt,
	}
}

func mapRecordToDomain(model recordModel) (domain.FlightRecord, error) {
	lastPrice, err := stringToDecimal(model.LastPrice)
	if err != nil {
		return domain.FlightRecord{}, err
	}
	minPrice, err := stringToDecimal(model.MinPrice)
	if err != nil {
		return domain.FlightRecord{}, err
	}
	maxPrice, err := stringToDecimal(model.MaxPrice)
	if err != nil {
		return domain.FlightRecord{}, err
	}
	threshold, err := stringToDecimal(model.AlertThreshold)
	if err != nil {
		return domain.FlightRecord{}, err
	}
	return domain.FlightRecord{
		ID:             model.ID,
		Origin:         model.Origin,
		Dest:           model.Dest,
		Date:           model.Date,
		OwnerID:        model.OwnerID,
		NotifyTarget:   model.NotifyTarget,
		LastPrice:      lastPrice,
		MinPrice:       minPrice,
		MaxPrice:       maxPrice,
		AlertThreshold: threshold,
		CheckCount:     model.CheckCount,
		CreatedAt:      model.CreatedAt,
		LastCheckedAt:  model.LastCheckedAt,
	}, nil
}

func decimalToString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func stringToDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
