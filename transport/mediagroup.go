package transport

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultMediaGroupDelay is the idle window after which a media group is
// considered complete. The transport gives no explicit end-of-group signal.
const DefaultMediaGroupDelay = 2 * time.Second

// Aggregator buffers messages sharing a media-group id and flushes each
// group as one batch once the burst has gone quiet for Delay.
//
// Per group the lifecycle is: first message creates the buffer, every
// subsequent message appends and supersedes the scheduled finalize, and the
// surviving finalize drains the buffer exactly once. A superseded finalize
// checks its generation token under the lock before touching any state, so
// cancellation has no observable side effect.
type Aggregator struct {
	Logger *slog.Logger
	Delay  time.Duration
	Flush  func(ctx context.Context, msgs []*Message)

	mu     sync.Mutex
	groups map[string][]*Message
	timers map[string]*time.Timer
	tokens map[string]uint64
	seq    uint64
}

func NewAggregator(logger *slog.Logger, delay time.Duration, flush func(ctx context.Context, msgs []*Message)) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if delay <= 0 {
		delay = DefaultMediaGroupDelay
	}
	return &Aggregator{
		Logger: logger.With("component", "aggregator"),
		Delay:  delay,
		Flush:  flush,
		groups: make(map[string][]*Message),
		timers: make(map[string]*time.Timer),
		tokens: make(map[string]uint64),
	}
}

// Add buffers one message of a group and (re)schedules the group's finalize.
// Cancel-then-reschedule is a single atomic sequence under the buffer lock.
func (a *Aggregator) Add(ctx context.Context, groupID string, msg *Message) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.groups[groupID] = append(a.groups[groupID], msg)
	mediaGroupBuffered.Inc()

	if t, ok := a.timers[groupID]; ok {
		t.Stop()
	}
	a.seq++
	token := a.seq
	a.tokens[groupID] = token
	// the flush fires after the inbound request that delivered this message
	// has already returned, so it must not inherit that request's cancelation
	flushCtx := context.WithoutCancel(ctx)
	a.timers[groupID] = time.AfterFunc(a.Delay, func() {
		a.finalize(flushCtx, groupID, token)
	})
}

func (a *Aggregator) finalize(ctx context.Context, groupID string, token uint64) {
	a.mu.Lock()
	if a.tokens[groupID] != token {
		// superseded by a later arrival; no side effects
		a.mu.Unlock()
		return
	}
	msgs := a.groups[groupID]
	delete(a.groups, groupID)
	delete(a.timers, groupID)
	delete(a.tokens, groupID)
	a.mu.Unlock()

	if len(msgs) == 0 {
		return
	}
	a.Logger.Debug("media group finalized", "groupID", groupID, "count", len(msgs))
	mediaGroupFlushed.Inc()
	mediaGroupBatchSize.Observe(float64(len(msgs)))
	a.Flush(ctx, msgs)
}
