package transport

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/veil-social/veil/automod/content"
	"github.com/veil-social/veil/automod/event"
)

// Registrar records a user as known after /start.
type Registrar interface {
	Add(ctx context.Context, userID int64) error
}

type handlerFunc func(ctx context.Context, evt event.Event, msg *Message) error

// Router maps each event variant to exactly one handler and fans prepared
// posts out to the destination set the moderation outcome selects. The table
// is built once at construction; an event kind without a handler is a
// programming error and is logged, not dispatched.
type Router struct {
	Logger                *slog.Logger
	ModerationChatIDs     []int64
	PublicationChannelIDs []int64
	Delivery              Delivery
	Registrar             Registrar

	pending  *PendingMessages
	handlers map[event.Kind]handlerFunc
}

func NewRouter(logger *slog.Logger, delivery Delivery, registrar Registrar, moderationChatIDs, publicationChannelIDs []int64) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		Logger:                logger.With("component", "router"),
		ModerationChatIDs:     moderationChatIDs,
		PublicationChannelIDs: publicationChannelIDs,
		Delivery:              delivery,
		Registrar:             registrar,
		pending:               NewPendingMessages(1024),
	}
	r.handlers = map[event.Kind]handlerFunc{
		event.KindCommandInfo:          r.handleCommandInfo,
		event.KindCommandStart:         r.handleCommandStart,
		event.KindPostPrepared:         r.handlePostPrepared,
		event.KindModerationStarted:    r.handleModerationStarted,
		event.KindModerationDecision:   r.handleModerationDecision,
		event.KindUserBlocked:          r.handleUserBlocked,
		event.KindSubscriptionRequired: r.handleSubscriptionRequired,
		event.KindUserThrottled:        r.handleUserThrottled,
		event.KindUserNotRegistered:    r.handleUserNotRegistered,
	}
	return r
}

// Dispatch routes one event to its handler. msg is the inbound message the
// event originated from (used to reach the submitting user).
func (r *Router) Dispatch(ctx context.Context, evt event.Event, msg *Message) error {
	h, ok := r.handlers[evt.Kind()]
	if !ok {
		r.Logger.Warn("no handler for event kind", "kind", evt.Kind())
		return nil
	}
	eventDispatchCount.WithLabelValues(string(evt.Kind())).Inc()
	return h(ctx, evt, msg)
}

func (r *Router) handleCommandInfo(ctx context.Context, _ event.Event, msg *Message) error {
	return r.notifyUser(ctx, msg, MsgCommandInfo)
}

func (r *Router) handleCommandStart(ctx context.Context, evt event.Event, msg *Message) error {
	start := evt.(event.CommandStart)
	if err := r.Registrar.Add(ctx, start.UserID); err != nil {
		return fmt.Errorf("registering user %d: %w", start.UserID, err)
	}
	return r.notifyUser(ctx, msg, MsgCommandStart)
}

// handlePostPrepared fans the post out: moderation chats always, publication
// channels only when approved. Delivery failures are recovered here: the
// submitter gets a failure notice and the process stays healthy.
func (r *Router) handlePostPrepared(ctx context.Context, evt event.Event, msg *Message) error {
	post := evt.(event.PostPrepared)

	dests := make([]int64, 0, len(r.ModerationChatIDs)+len(r.PublicationChannelIDs))
	dests = append(dests, r.ModerationChatIDs...)
	if post.Approved {
		dests = append(dests, r.PublicationChannelIDs...)
	}

	failed := false
	for _, chatID := range dests {
		if err := r.deliver(ctx, chatID, post.Content); err != nil {
			r.Logger.Error("post delivery failed", "chatID", chatID, "err", err)
			failed = true
		}
	}

	if failed {
		r.notifyUserBestEffort(ctx, msg, MsgSendError)
		return nil
	}
	if post.Approved {
		return r.notifyUser(ctx, msg, MsgSendSuccess)
	}
	return nil
}

func (r *Router) deliver(ctx context.Context, chatID int64, c content.Content) error {
	switch c := c.(type) {
	case content.TextItem:
		_, err := r.Delivery.SendText(ctx, chatID, c.Text)
		countDelivery("text", err)
		return err
	case content.MediaItem:
		_, err := r.Delivery.SendMedia(ctx, chatID, c)
		countDelivery("media", err)
		return err
	case content.MediaGroup:
		switch {
		case len(c.Items) > 1:
			err := r.Delivery.SendMediaGroup(ctx, chatID, c.Items)
			countDelivery("media_group", err)
			return err
		case len(c.Items) == 1:
			// grouped-media sends need at least two items
			_, err := r.Delivery.SendMedia(ctx, chatID, c.Items[0])
			countDelivery("media", err)
			return err
		default:
			return nil
		}
	default:
		return fmt.Errorf("unsupported content type %T", c)
	}
}

func (r *Router) handleModerationStarted(ctx context.Context, _ event.Event, msg *Message) error {
	id, err := r.Delivery.SendText(ctx, msg.ChatID, MsgModerationPending)
	if err != nil {
		return fmt.Errorf("sending pending placeholder: %w", err)
	}
	r.pending.Set(msg.ChatID, id)
	return nil
}

func (r *Router) handleModerationDecision(ctx context.Context, evt event.Event, msg *Message) error {
	dec := evt.(event.ModerationDecision)

	staffText := fmt.Sprintf(StaffRejectedFmt, dec.Reason)
	if dec.Approved {
		staffText = fmt.Sprintf(StaffApprovedFmt, dec.Reason)
	}
	for _, chatID := range r.ModerationChatIDs {
		if _, err := r.Delivery.SendText(ctx, chatID, staffText); err != nil {
			r.Logger.Error("failed to notify moderation chat", "chatID", chatID, "err", err)
		}
	}

	if id, ok := r.pending.Pop(msg.ChatID); ok {
		if err := r.Delivery.DeleteMessage(ctx, msg.ChatID, id); err != nil {
			r.Logger.Warn("failed to delete pending placeholder", "chatID", msg.ChatID, "messageID", id, "err", err)
		}
	}

	// approval is acknowledged via the PostPrepared success path, not here
	if !dec.Approved {
		return r.notifyUser(ctx, msg, MsgModerationRejected)
	}
	return nil
}

func (r *Router) handleUserBlocked(ctx context.Context, _ event.Event, msg *Message) error {
	return r.notifyUser(ctx, msg, MsgUserBlocked)
}

func (r *Router) handleSubscriptionRequired(ctx context.Context, _ event.Event, msg *Message) error {
	return r.notifyUser(ctx, msg, MsgSubscriptionRequired)
}

func (r *Router) handleUserThrottled(ctx context.Context, evt event.Event, msg *Message) error {
	throttled := evt.(event.UserThrottled)
	return r.notifyUser(ctx, msg, fmt.Sprintf(MsgThrottledFmt, throttled.RemainingSeconds))
}

func (r *Router) handleUserNotRegistered(ctx context.Context, _ event.Event, msg *Message) error {
	return r.notifyUser(ctx, msg, MsgNotRegistered)
}

func (r *Router) notifyUser(ctx context.Context, msg *Message, text string) error {
	_, err := r.Delivery.SendText(ctx, msg.ChatID, text)
	countDelivery("text", err)
	return err
}

func (r *Router) notifyUserBestEffort(ctx context.Context, msg *Message, text string) {
	if err := r.notifyUser(ctx, msg, text); err != nil {
		r.Logger.Warn("failed to notify submitting user", "chatID", msg.ChatID, "err", err)
	}
}

func countDelivery(kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	deliveryCount.WithLabelValues(kind, outcome).Inc()
}
