package db

import (
	"context"
	"errors"
	"time"

	"eventreg/src/models"
	"eventreg/src/models/scopes"
	"eventreg/src/types"

	"gorm.io/gorm"
)

// GormStorage backs registrations with postgres or sqlite.
type GormStorage struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStorage(gdb *gorm.DB) *GormStorage {
	return &GormStorage{db: gdb, now: time.Now}
}

func (s *GormStorage) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&models.Registration{})
}

func (s *GormStorage) CreateRegistration(ctx context.Context, in types.RegistrationInput) (*models.Registration, error) {
	r := newPendingRegistration(in, s.now())
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormStorage) GetRegistration(ctx context.Context, id uint) (*models.Registration, error) {
	var r models.Registration
	err := s.db.WithContext(ctx).First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormStorage) GetAllRegistrations(ctx context.Context) ([]models.Registration, error) {
	registrations := []models.Registration{}
	err := s.db.WithContext(ctx).
		Model(&models.Registration{}).
		Scopes(scopes.NewestFirst).
		Find(&registrations).
		Error
	if err != nil {
		return nil, err
	}
	return registrations, nil
}

func (s *GormStorage) UpdateRegistrationStatus(ctx context.Context, id uint, status types.RegistrationStatus) error {
	return s.db.WithContext(ctx).
		Model(&models.Registration{}).
		Scopes(scopes.WithID(id)).
		Update("status", status).
		Error
}

func (s *GormStorage) UpdateCheckedInStatus(ctx context.Context, id uint, checkedIn bool) error {
	return s.db.WithContext(ctx).
		Model(&models.Registration{}).
		Scopes(scopes.WithID(id)).
		Update("checked_in", checkedIn).
		Error
}
