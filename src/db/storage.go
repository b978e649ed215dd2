package db

import (
	"context"
	"fmt"
	"time"

	"eventreg/src/config"
	"eventreg/src/lib"
	"eventreg/src/models"
	"eventreg/src/types"

	"google.golang.org/api/option"
)

// StorageAdapter persists registrations. Get returns nil, nil for unknown ids
// and the update methods do not fail when no row matches.
type StorageAdapter interface {
	CreateRegistration(ctx context.Context, in types.RegistrationInput) (*models.Registration, error)
	GetRegistration(ctx context.Context, id uint) (*models.Registration, error)
	GetAllRegistrations(ctx context.Context) ([]models.Registration, error)
	UpdateRegistrationStatus(ctx context.Context, id uint, status types.RegistrationStatus) error
	UpdateCheckedInStatus(ctx context.Context, id uint, checkedIn bool) error
}

// Migrator is implemented by backends that own a schema.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// NewStorageAdapter selects the backend named by cfg.StorageMode.
func NewStorageAdapter(ctx context.Context, cfg *config.Config, sheetOpts ...option.ClientOption) (StorageAdapter, error) {
	switch cfg.StorageMode {
	case config.StorageModeMemory:
		return NewMemoryStorage(), nil
	case config.StorageModeSheets:
		svc, err := lib.GAPICreateSheetsService(ctx, cfg.Sheets, sheetOpts...)
		if err != nil {
			return nil, types.NewConfigurationError("Google Sheets storage is not configured", err)
		}
		return NewSheetsStorage(svc, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName), nil
	case config.StorageModePostgres, config.StorageModeSQLite:
		gdb, err := GetDb(cfg)
		if err != nil {
			return nil, types.NewConfigurationError("Database storage is not configured", err)
		}
		return NewGormStorage(gdb), nil
	}
	return nil, types.NewConfigurationError("Unsupported storage mode", fmt.Errorf("STORAGE_MODE=%q", cfg.StorageMode))
}

func newPendingRegistration(in types.RegistrationInput, now time.Time) models.Registration {
	return models.Registration{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Qty:       in.Qty,
		Dietary:   in.Dietary,
		Notes:     in.Notes,
		Status:    types.REGISTRATION_PENDING,
		CheckedIn: false,
		CreatedAt: now.UTC(),
	}
}
