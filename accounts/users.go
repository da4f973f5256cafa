package accounts

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserService answers registration and blocked lookups for the submission
// pipeline, caching rows briefly since both are consulted on every inbound
// message.
type UserService struct {
	Logger *slog.Logger

	db    *gorm.DB
	cache *expirable.LRU[int64, User]
}

func NewUserService(logger *slog.Logger, db *gorm.DB, cacheSize int, cacheTTL time.Duration) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &UserService{
		Logger: logger.With("component", "users"),
		db:     db,
		cache:  expirable.NewLRU[int64, User](cacheSize, nil, cacheTTL),
	}
}

// Add registers a user; re-adding is a no-op.
func (s *UserService) Add(ctx context.Context, userID int64) error {
	user := User{UserID: userID}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error
	if err != nil {
		return err
	}
	s.cache.Remove(userID)
	return nil
}

func (s *UserService) Get(ctx context.Context, userID int64) (*User, error) {
	if user, ok := s.cache.Get(userID); ok {
		return &user, nil
	}
	var user User
	err := s.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.cache.Add(userID, user)
	return &user, nil
}

func (s *UserService) Has(ctx context.Context, userID int64) (bool, error) {
	user, err := s.Get(ctx, userID)
	return user != nil, err
}

func (s *UserService) IsBlocked(ctx context.Context, userID int64) (bool, error) {
	user, err := s.Get(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	return user.Blocked, nil
}

func (s *UserService) SetBlocked(ctx context.Context, userID int64, blocked bool) error {
	err := s.db.WithContext(ctx).Model(&User{}).Where("user_id = ?", userID).Update("blocked", blocked).Error
	if err != nil {
		return err
	}
	s.cache.Remove(userID)
	return nil
}

func (s *UserService) Remove(ctx context.Context, userID int64) error {
	err := s.db.WithContext(ctx).Delete(&User{}, "user_id = ?", userID).Error
	if err != nil {
		return err
	}
	s.cache.Remove(userID)
	return nil
}
