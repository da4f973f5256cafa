// Domain events produced by the moderation pipeline and consumed by the
// transport router. This is a closed variant set: adding a variant means
// adding a Kind constant, a struct, and a router handler, all checked at
// compile time. No open-ended subclassing.
package event

import (
	"github.com/veil-social/veil/automod/content"
)

type Kind string

const (
	KindCommandInfo          = Kind("command_info")
	KindCommandStart         = Kind("command_start")
	KindPostPrepared         = Kind("post_prepared")
	KindModerationStarted    = Kind("moderation_started")
	KindModerationDecision   = Kind("moderation_decision")
	KindUserBlocked          = Kind("user_blocked")
	KindSubscriptionRequired = Kind("subscription_required")
	KindUserThrottled        = Kind("user_throttled")
	KindUserNotRegistered    = Kind("user_not_registered")
)

// Event is the tagged variant interface. Kind() is the discriminator used by
// the router's dispatch table; handlers do a single type assertion after that.
type Event interface {
	Kind() Kind
}

type CommandInfo struct{}

type CommandStart struct {
	UserID int64
}

// PostPrepared carries a fully assembled logical post plus the outcome of
// moderation. It is the trigger for fan-out delivery.
type PostPrepared struct {
	Content  content.Content
	Approved bool
}

type ModerationStarted struct{}

type ModerationDecision struct {
	Approved bool
	Reason   string
}

type UserBlocked struct{}

type SubscriptionRequired struct{}

// UserThrottled reports how many seconds remain on the submitter's cooldown.
type UserThrottled struct {
	RemainingSeconds int
}

type UserNotRegistered struct{}

func (CommandInfo) Kind() Kind          { return KindCommandInfo }
func (CommandStart) Kind() Kind         { return KindCommandStart }
func (PostPrepared) Kind() Kind         { return KindPostPrepared }
func (ModerationStarted) Kind() Kind    { return KindModerationStarted }
func (ModerationDecision) Kind() Kind   { return KindModerationDecision }
func (UserBlocked) Kind() Kind          { return KindUserBlocked }
func (SubscriptionRequired) Kind() Kind { return KindSubscriptionRequired }
func (UserThrottled) Kind() Kind        { return KindUserThrottled }
func (UserNotRegistered) Kind() Kind    { return KindUserNotRegistered }
