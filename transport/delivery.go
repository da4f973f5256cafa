package transport

import (
	"context"

	"github.com/veil-social/veil/automod/content"
)

// Delivery is the outbound half of the chat transport. Implementations wrap
// a concrete messaging platform; every call may fail with a recoverable
// delivery error, which the router absorbs.
type Delivery interface {
	// SendText delivers a text message and returns its platform message id.
	SendText(ctx context.Context, chatID int64, text string) (int64, error)
	// SendMedia delivers a single photo or video with its caption.
	SendMedia(ctx context.Context, chatID int64, item content.MediaItem) (int64, error)
	// SendMediaGroup delivers two or more items as one grouped post. The
	// platform's grouped-media primitive requires at least two items.
	SendMediaGroup(ctx context.Context, chatID int64, items []content.MediaItem) error
	// DeleteMessage removes a previously sent message (used for pending
	// moderation placeholders).
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
}
