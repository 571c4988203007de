package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserPostgresStorage implements ports.UserStorage with GORM.
type UserPostgresStorage struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewUserPostgresStorage creates a new UserPostgresStorage.
func NewUserPostgresStorage(db *gorm.DB, logger *slog.Logger) *UserPostgresStorage {
	return &UserPostgresStorage{db: db, logger: logger}
}

// GetOrCreateSystemUser returns the system user's id, creating the row on
// first use. The system user owns galleries created without an explicit
// owner (bulk imports, seeds).
func (s *UserPostgresStorage) GetOrCreateSystemUser(ctx context.Context) (uuid.UUID, error) {
	var user domain.User
	result := s.db.WithContext(ctx).Where("username = ?", "system_user").First(&user)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		newUser := domain.User{
			ID:           uuid.New(),
			Username:     "system_user",
			Email:        "system@example.com",
			PasswordHash: "dummy_hash",
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if createResult := s.db.WithContext(ctx).Create(&newUser); createResult.Error != nil {
			return uuid.Nil, fmt.Errorf("failed to create system user: %w", createResult.Error)
		}
		s.logger.Info("system user created", "id", newUser.ID)
		return newUser.ID, nil
	} else if result.Error != nil {
		return uuid.Nil, fmt.Errorf("failed to look up system user: %w", result.Error)
	}

	return user.ID, nil
}
