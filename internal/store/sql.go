package store

import (
	"context"
	"fmt"
	"time"

	"maitred/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"go.uber.org/zap"
)

// SQLStore keeps confirmed orders in a relational database through gorm
type SQLStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// OpenSQL connects to a sqlite3 or postgres database and migrates the order tables
func OpenSQL(driver, dsn string, logger *zap.Logger) (*SQLStore, error) {
	switch driver {
	case "sqlite3", "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite3" {
		// sqlite allows one writer; in-memory databases are per connection
		db.DB().SetMaxOpenConns(1)
	} else {
		db.DB().SetMaxIdleConns(10)
		db.DB().SetMaxOpenConns(100)
		db.DB().SetConnMaxLifetime(time.Hour)
	}

	s, err := NewSQLStore(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open connection and migrates the order tables
func NewSQLStore(db *gorm.DB, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db.LogMode(false)
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}).Error; err != nil {
		return nil, fmt.Errorf("failed to migrate order tables: %w", err)
	}
	return &SQLStore{db: db, logger: logger}, nil
}

// Append inserts the order and its lines in one transaction. An order whose
// reference is already stored is accepted without a second insert.
func (s *SQLStore) Append(ctx context.Context, order models.ConfirmedOrder) error {
	if err := ctx.Err(); err != nil {
		return &models.PersistenceError{Sink: "database", Err: err}
	}

	record := models.NewOrderRecord(order)
	tx := s.db.Begin()
	if err := tx.Error; err != nil {
		return &models.PersistenceError{Sink: "database", Err: err}
	}
	var existing int
	if err := tx.Model(&models.Order{}).Where("reference = ?", order.ID).Count(&existing).Error; err != nil {
		tx.Rollback()
		return &models.PersistenceError{Sink: "database", Err: err}
	}
	if existing > 0 {
		tx.Rollback()
		s.logger.Debug("Order already stored", zap.String("order", order.ID))
		return nil
	}
	if err := tx.Create(record).Error; err != nil {
		tx.Rollback()
		return &models.PersistenceError{Sink: "database", Err: err}
	}
	if err := tx.Commit().Error; err != nil {
		return &models.PersistenceError{Sink: "database", Err: err}
	}

	s.logger.Debug("Order inserted", zap.String("order", order.ID), zap.Uint("row", record.ID))
	return nil
}

// Recent returns up to limit orders, newest first
func (s *SQLStore) Recent(ctx context.Context, limit int) ([]models.ConfirmedOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rows []models.Order
	if err := s.db.Preload("Items").Order("id desc").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders := make([]models.ConfirmedOrder, 0, len(rows))
	for i := range rows {
		orders = append(orders, rows[i].ToConfirmedOrder())
	}
	return orders, nil
}

// Find returns the order with the given reference
func (s *SQLStore) Find(ctx context.Context, id string) (models.ConfirmedOrder, error) {
	if err := ctx.Err(); err != nil {
		return models.ConfirmedOrder{}, err
	}

	var row models.Order
	err := s.db.Preload("Items").Where("reference = ?", id).First(&row).Error
	if gorm.IsRecordNotFoundError(err) {
		return models.ConfirmedOrder{}, &models.NotFoundError{Kind: "order", Query: id}
	}
	if err != nil {
		return models.ConfirmedOrder{}, fmt.Errorf("failed to load order: %w", err)
	}
	return row.ToConfirmedOrder(), nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}
