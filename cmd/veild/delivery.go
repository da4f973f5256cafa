package main

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/veil-social/veil/automod/content"
	"github.com/veil-social/veil/transport"
)

// logDelivery logs every outbound send instead of talking to a real chat
// transport. Media goes through the same platform-object wrapping a real
// delivery would use, and message ids are locally unique so downstream
// pending bookkeeping still works end to end.
type logDelivery struct {
	logger *slog.Logger
	nextID atomic.Int64
}

func (d *logDelivery) SendText(ctx context.Context, chatID int64, text string) (int64, error) {
	id := d.nextID.Add(1)
	d.logger.Info("delivery: text", "chatID", chatID, "messageID", id, "text", text)
	return id, nil
}

func (d *logDelivery) SendMedia(ctx context.Context, chatID int64, item content.MediaItem) (int64, error) {
	id := d.nextID.Add(1)
	m := transport.WrapMedia(item)
	d.logger.Info("delivery: media", "chatID", chatID, "messageID", id, "kind", m.Kind, "media", m.Media, "caption", m.Caption)
	return id, nil
}

func (d *logDelivery) SendMediaGroup(ctx context.Context, chatID int64, items []content.MediaItem) error {
	wrapped := transport.WrapMediaGroup(content.MediaGroup{Items: items})
	for i, m := range wrapped {
		d.logger.Info("delivery: media group item", "chatID", chatID, "index", i, "count", len(wrapped), "kind", m.Kind, "media", m.Media, "caption", m.Caption)
	}
	return nil
}

func (d *logDelivery) DeleteMessage(ctx context.Context, chatID int64, messageID int64) error {
	d.logger.Info("delivery: delete", "chatID", chatID, "messageID", messageID)
	return nil
}
