package transport

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/veil-social/veil/automod/content"
	"github.com/veil-social/veil/automod/engine"
	"github.com/veil-social/veil/automod/event"
)

// Forwarding type names, matching the content payloads the pipeline accepts.
const (
	ForwardText  = "text"
	ForwardPhoto = "photo"
	ForwardVideo = "video"
)

// UserDirectory answers the gatekeeping questions asked about a submitter.
type UserDirectory interface {
	Has(ctx context.Context, userID int64) (bool, error)
	IsBlocked(ctx context.Context, userID int64) (bool, error)
}

// SubscriptionChecker enforces an optional channel-subscription requirement.
type SubscriptionChecker interface {
	IsSubscribed(ctx context.Context, userID int64) (bool, error)
}

// SubmissionHandlerConfig carries the behavior knobs for inbound handling.
type SubmissionHandlerConfig struct {
	ModerationEnabled bool
	ForwardingTypes   []string
	MediaGroupDelay   time.Duration
}

// SubmissionHandler is the inbound edge of the pipeline: it applies the
// gatekeeping chain (blocked, subscription, registration, throttle), routes
// commands, buffers media groups, and drives single submissions and drained
// batches through moderation into the router.
type SubmissionHandler struct {
	Logger *slog.Logger
	Router *Router
	Engine *engine.Engine

	// optional collaborators; nil disables the corresponding check
	Users   UserDirectory
	Subs    SubscriptionChecker
	Limiter Limiter

	moderationEnabled bool
	forwarding        map[string]bool
	aggregator        *Aggregator
}

func NewSubmissionHandler(logger *slog.Logger, router *Router, eng *engine.Engine, cfg SubmissionHandlerConfig) *SubmissionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &SubmissionHandler{
		Logger:            logger.With("component", "submissions"),
		Router:            router,
		Engine:            eng,
		moderationEnabled: cfg.ModerationEnabled,
		forwarding:        make(map[string]bool),
	}
	for _, ft := range cfg.ForwardingTypes {
		h.forwarding[ft] = true
	}
	h.aggregator = NewAggregator(logger, cfg.MediaGroupDelay, h.flushBatch)
	return h
}

// HandleMessage is the single entry point for inbound messages.
func (h *SubmissionHandler) HandleMessage(ctx context.Context, msg *Message) error {
	text := msg.SourceText()

	if h.Users != nil {
		blocked, err := h.Users.IsBlocked(ctx, msg.UserID)
		if err != nil {
			h.Logger.Error("blocked lookup failed", "userID", msg.UserID, "err", err)
		} else if blocked {
			return h.dispatch(ctx, event.UserBlocked{}, msg)
		}
	}

	if h.Subs != nil {
		subscribed, err := h.Subs.IsSubscribed(ctx, msg.UserID)
		if err != nil {
			h.Logger.Error("subscription lookup failed", "userID", msg.UserID, "err", err)
		} else if !subscribed {
			return h.dispatch(ctx, event.SubscriptionRequired{}, msg)
		}
	}

	if h.Users != nil && !strings.HasPrefix(text, "/start") {
		known, err := h.Users.Has(ctx, msg.UserID)
		if err != nil {
			h.Logger.Error("registration lookup failed", "userID", msg.UserID, "err", err)
		} else if !known {
			return h.dispatch(ctx, event.UserNotRegistered{}, msg)
		}
	}

	if strings.HasPrefix(text, "/") {
		return h.handleCommand(ctx, text, msg)
	}

	if h.Limiter != nil {
		remaining, ok := h.Limiter.Acquire(msg.UserID)
		if !ok {
			secs := int(math.Round(remaining.Seconds()))
			return h.dispatch(ctx, event.UserThrottled{RemainingSeconds: secs}, msg)
		}
		defer h.Limiter.Release(msg.UserID)
	}

	if msg.MediaGroupID != "" && (msg.PhotoRef != "" || msg.VideoRef != "") {
		h.aggregator.Add(ctx, msg.MediaGroupID, msg)
		return nil
	}

	return h.process(ctx, []*Message{msg})
}

func (h *SubmissionHandler) handleCommand(ctx context.Context, text string, msg *Message) error {
	cmd := strings.Fields(text)[0]
	switch cmd {
	case "/start":
		return h.dispatch(ctx, event.CommandStart{UserID: msg.UserID}, msg)
	case "/info":
		return h.dispatch(ctx, event.CommandInfo{}, msg)
	default:
		h.Logger.Debug("ignoring unknown command", "command", cmd)
		return nil
	}
}

func (h *SubmissionHandler) flushBatch(ctx context.Context, msgs []*Message) {
	if err := h.process(ctx, msgs); err != nil {
		h.Logger.Error("failed to process media batch", "count", len(msgs), "err", err)
	}
}

// process handles one logical post: either a single inbound message or a
// drained media-group batch.
func (h *SubmissionHandler) process(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	first := msgs[0]

	if len(msgs) == 1 && first.PhotoRef == "" && first.VideoRef == "" {
		return h.processText(ctx, first)
	}
	return h.processMedia(ctx, msgs)
}

// processText moderates and forwards a plain text submission. A rejected
// post produces no PostPrepared at all: the rejection notice comes from the
// decision handler.
func (h *SubmissionHandler) processText(ctx context.Context, msg *Message) error {
	if msg.Text == "" || !h.forwarding[ForwardText] {
		return nil
	}

	approved := true
	if h.moderationEnabled {
		dec, err := h.moderate(ctx, engine.Submission{Text: msg.Text}, msg)
		if err != nil {
			h.Router.notifyUserBestEffort(ctx, msg, MsgSendError)
			return err
		}
		approved = dec != nil && dec.Approved
		if !approved {
			return nil
		}
	}

	return h.dispatch(ctx, event.PostPrepared{
		Content:  content.TextItem{Text: msg.Text},
		Approved: approved,
	}, msg)
}

// processMedia assembles a media group batch, moderates its caption-bearing
// messages, and emits exactly one PostPrepared for the whole batch. When
// several decisions occur across the batch the last one observed wins
// (last-write-wins, the reference merge policy).
func (h *SubmissionHandler) processMedia(ctx context.Context, msgs []*Message) error {
	items := make([]content.MediaItem, 0, len(msgs))
	for _, msg := range msgs {
		if item, ok := h.mediaItem(msg); ok {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil
	}

	// the first captioned message captions the whole group, on the first item only
	for _, msg := range msgs {
		if msg.Caption != "" {
			items[0].Caption = msg.Caption
			break
		}
	}

	approved := true
	if h.moderationEnabled {
		var last *event.ModerationDecision
		for _, msg := range msgs {
			if msg.Caption == "" {
				continue
			}
			dec, err := h.moderate(ctx, engine.Submission{Text: msg.Caption, ImageRef: msg.PhotoRef}, msg)
			if err != nil {
				h.Router.notifyUserBestEffort(ctx, msgs[0], MsgSendError)
				return err
			}
			if dec != nil {
				last = dec
			}
		}
		approved = last != nil && last.Approved
	}

	return h.dispatch(ctx, event.PostPrepared{
		Content:  content.MediaGroup{Items: items},
		Approved: approved,
	}, msgs[0])
}

// moderate runs one submission through the engine, forwarding every event to
// the router and returning the last decision observed.
func (h *SubmissionHandler) moderate(ctx context.Context, sub engine.Submission, msg *Message) (*event.ModerationDecision, error) {
	var last *event.ModerationDecision
	err := h.Engine.Process(ctx, sub, func(evt event.Event) {
		if dec, ok := evt.(event.ModerationDecision); ok {
			last = &dec
		}
		if err := h.Router.Dispatch(ctx, evt, msg); err != nil {
			h.Logger.Error("event dispatch failed", "kind", evt.Kind(), "err", err)
		}
	})
	if err != nil {
		return nil, err
	}
	return last, nil
}

func (h *SubmissionHandler) mediaItem(msg *Message) (content.MediaItem, bool) {
	switch {
	case msg.PhotoRef != "" && h.forwarding[ForwardPhoto]:
		return content.MediaItem{Kind: content.MediaPhoto, Ref: msg.PhotoRef}, true
	case msg.VideoRef != "" && h.forwarding[ForwardVideo]:
		return content.MediaItem{Kind: content.MediaVideo, Ref: msg.VideoRef}, true
	}
	return content.MediaItem{}, false
}

func (h *SubmissionHandler) dispatch(ctx context.Context, evt event.Event, msg *Message) error {
	return h.Router.Dispatch(ctx, evt, msg)
}
