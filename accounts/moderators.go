package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SystemUserID owns the bootstrap root moderator row.
const SystemUserID int64 = 0

type Permission string

const (
	PermApprovePosts     = Permission("can_approve_posts")
	PermManageBans       = Permission("can_manage_bans")
	PermManageModerators = Permission("can_manage_moderators")
)

var (
	ErrPermissionDenied = errors.New("moderator lacks the required permission")
	ErrSelfAction       = errors.New("moderators cannot perform this action on themselves")
)

// ModeratorService enforces the moderator permission matrix around moderator
// and ban management. Permission failures surface to the caller and are
// never retried.
type ModeratorService struct {
	Logger *slog.Logger

	db *gorm.DB
}

func NewModeratorService(logger *slog.Logger, db *gorm.DB) *ModeratorService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModeratorService{
		Logger: logger.With("component", "moderators"),
		db:     db,
	}
}

// Init ensures the system root moderator exists.
func (s *ModeratorService) Init(ctx context.Context) error {
	mod := Moderator{UserID: SystemUserID, IsRoot: true}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&mod).Error
}

func (s *ModeratorService) Get(ctx context.Context, userID int64) (*Moderator, error) {
	var mod Moderator
	err := s.db.WithContext(ctx).First(&mod, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mod, nil
}

// Can reports whether the actor holds the permission. Root moderators hold
// every permission.
func (s *ModeratorService) Can(ctx context.Context, actorID int64, perm Permission) (bool, error) {
	mod, err := s.Get(ctx, actorID)
	if err != nil || mod == nil {
		return false, err
	}
	if mod.IsRoot {
		return true, nil
	}
	switch perm {
	case PermApprovePosts:
		return mod.CanApprovePosts, nil
	case PermManageBans:
		return mod.CanManageBans, nil
	case PermManageModerators:
		return mod.CanManageModerators, nil
	}
	return false, nil
}

func (s *ModeratorService) authorize(ctx context.Context, actorID, userID int64, perm Permission) error {
	ok, err := s.Can(ctx, actorID, perm)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: actor=%d perm=%s", ErrPermissionDenied, actorID, perm)
	}
	if actorID == userID {
		return fmt.Errorf("%w: actor=%d", ErrSelfAction, actorID)
	}
	return nil
}

func (s *ModeratorService) Add(ctx context.Context, actorID, userID int64) error {
	if err := s.authorize(ctx, actorID, userID, PermManageModerators); err != nil {
		return err
	}
	mod := Moderator{UserID: userID}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&mod).Error
}

func (s *ModeratorService) Remove(ctx context.Context, actorID, userID int64) error {
	if err := s.authorize(ctx, actorID, userID, PermManageModerators); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&Moderator{}, "user_id = ?", userID).Error
}

func (s *ModeratorService) UpdatePermissions(ctx context.Context, actorID, userID int64, approvePosts, manageBans, manageModerators bool) error {
	if err := s.authorize(ctx, actorID, userID, PermManageModerators); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&Moderator{}).Where("user_id = ?", userID).Updates(map[string]any{
		"can_approve_posts":     approvePosts,
		"can_manage_bans":       manageBans,
		"can_manage_moderators": manageModerators,
	}).Error
}

func (s *ModeratorService) Ban(ctx context.Context, actorID, userID int64) error {
	if err := s.authorize(ctx, actorID, userID, PermManageBans); err != nil {
		return err
	}
	ban := Ban{UserID: userID, ActorID: actorID}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&ban).Error
}

func (s *ModeratorService) Unban(ctx context.Context, actorID, userID int64) error {
	if err := s.authorize(ctx, actorID, userID, PermManageBans); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&Ban{}, "user_id = ?", userID).Error
}

func (s *ModeratorService) IsBanned(ctx context.Context, userID int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&Ban{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}
