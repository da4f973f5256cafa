package transport

import (
	"sync"
)

// PendingMessages remembers the "sent to moderation" placeholder message per
// chat so the decision handler can delete it later. Bounded: once the cap is
// reached, the oldest tracked chat is evicted.
type PendingMessages struct {
	mu    sync.Mutex
	max   int
	order []int64
	byID  map[int64]int64
}

func NewPendingMessages(maxChats int) *PendingMessages {
	if maxChats <= 0 {
		maxChats = 128
	}
	return &PendingMessages{
		max:  maxChats,
		byID: make(map[int64]int64),
	}
}

func (p *PendingMessages) Set(chatID, messageID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.byID[chatID]; !ok {
		if len(p.order) >= p.max {
			oldest := p.order[0]
			p.order = p.order[1:]
			delete(p.byID, oldest)
		}
		p.order = append(p.order, chatID)
	}
	p.byID[chatID] = messageID
}

func (p *PendingMessages) Pop(chatID int64) (int64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id, ok := p.byID[chatID]
	if !ok {
		return 0, false
	}
	delete(p.byID, chatID)
	for i, c := range p.order {
		if c == chatID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return id, true
}
