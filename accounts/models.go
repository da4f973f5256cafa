// Persistence for users, moderators, and bans. These are collaborators of
// the moderation core: the pipeline only consumes the lookup interfaces.
package accounts

import (
	"time"
)

// The keys are platform user ids, never generated locally; autoIncrement is
// disabled so id 0 (the system root moderator) is stored as-is instead of
// being treated as an unset auto-increment column.
type User struct {
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	Blocked   bool
	CreatedAt time.Time
}

type Moderator struct {
	UserID              int64 `gorm:"primaryKey;autoIncrement:false"`
	IsRoot              bool
	CanApprovePosts     bool
	CanManageBans       bool
	CanManageModerators bool
	CreatedAt           time.Time
}

type Ban struct {
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	ActorID   int64
	CreatedAt time.Time
}
