package transport

import (
	"context"
	"errors"
	"sync"

	"github.com/veil-social/veil/automod/content"
)

// fakeDelivery records every outbound call. Safe for use from timer
// goroutines (aggregator flushes).
type fakeDelivery struct {
	mu     sync.Mutex
	nextID int64

	texts       []sentText
	media       []sentMedia
	mediaGroups []sentMediaGroup
	deleted     []int64

	failText bool
}

type sentText struct {
	ChatID int64
	Text   string
}

type sentMedia struct {
	ChatID int64
	Item   content.MediaItem
}

type sentMediaGroup struct {
	ChatID int64
	Items  []content.MediaItem
}

func (d *fakeDelivery) SendText(ctx context.Context, chatID int64, text string) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failText {
		return 0, errors.New("send failed")
	}
	d.nextID++
	d.texts = append(d.texts, sentText{ChatID: chatID, Text: text})
	return d.nextID, nil
}

func (d *fakeDelivery) SendMedia(ctx context.Context, chatID int64, item content.MediaItem) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.media = append(d.media, sentMedia{ChatID: chatID, Item: item})
	return d.nextID, nil
}

func (d *fakeDelivery) SendMediaGroup(ctx context.Context, chatID int64, items []content.MediaItem) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mediaGroups = append(d.mediaGroups, sentMediaGroup{ChatID: chatID, Items: items})
	return nil
}

func (d *fakeDelivery) DeleteMessage(ctx context.Context, chatID int64, messageID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted = append(d.deleted, messageID)
	return nil
}

func (d *fakeDelivery) textsTo(chatID int64) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []string
	for _, s := range d.texts {
		if s.ChatID == chatID {
			out = append(out, s.Text)
		}
	}
	return out
}

type fakeRegistrar struct {
	added []int64
	err   error
}

func (r *fakeRegistrar) Add(ctx context.Context, userID int64) error {
	if r.err != nil {
		return r.err
	}
	r.added = append(r.added, userID)
	return nil
}
