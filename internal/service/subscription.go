package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionService manages which authors a user follows
type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

// Subscribe makes userID follow authorID.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	if userID == authorID {
		return NewValidationError("author", "cannot subscribe to yourself")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var author models.User
		if err := tx.Select("id").First(&author, "id = ?", authorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newNotFound("user", authorID)
			}
			return err
		}

		follow := models.Follow{UserID: userID, AuthorID: authorID}
		if err := tx.Omit(clause.Associations).Create(&follow).Error; err != nil {
			if isUniqueViolation(err) {
				return newConflict("subscription", "already subscribed to this author")
			}
			return err
		}
		return nil
	})
	return mapStorageError(err, "subscription")
}

// Unsubscribe removes the subscription of userID to authorID.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, userID, authorID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return mapStorageError(result.Error, "subscription")
	}
	if result.RowsAffected == 0 {
		return newNotFound("subscription", authorID)
	}
	return nil
}

// IsSubscribed reports whether userID follows authorID.
func (s *SubscriptionService) IsSubscribed(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, mapStorageError(err, "subscription")
	}
	return count > 0, nil
}
