package storage

import (
	"context"
	"errors"

	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLBackend persists slots in the storage_slots table.
type SQLBackend struct {
	db *gorm.DB
}

func NewSQLBackend(db *gorm.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (s *SQLBackend) Name() string { return config.StorageBackendSQL }

func (s *SQLBackend) Read(ctx context.Context, namespace, slot string) (string, bool, error) {
	if err := validateKey(namespace, slot); err != nil {
		return "", false, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid storage key")
	}
	var row models.StorageSlot
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND slot = ?", namespace, slot).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read storage slot")
	}
	return row.Payload, true, nil
}

func (s *SQLBackend) Write(ctx context.Context, namespace, slot, value string) error {
	if err := validateKey(namespace, slot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid storage key")
	}
	row := models.StorageSlot{SessionID: namespace, Slot: slot, Payload: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write storage slot")
	}
	return nil
}

func (s *SQLBackend) Delete(ctx context.Context, namespace, slot string) error {
	if err := validateKey(namespace, slot); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid storage key")
	}
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND slot = ?", namespace, slot).
		Delete(&models.StorageSlot{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete storage slot")
	}
	return nil
}

func (s *SQLBackend) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
