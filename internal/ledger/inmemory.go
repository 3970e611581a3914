package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type inMemoryLedger struct {
	mu        sync.RWMutex
	messages  map[string]Message
	responses map[string]Response
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit tests
// and local development.
func NewInMemory() Ledger {
	return &inMemoryLedger{
		messages:  make(map[string]Message),
		responses: make(map[string]Response),
	}
}

func (l *inMemoryLedger) Append(_ context.Context, msg Message) (string, bool, error) {
	msg = prepare(msg)

	l.mu.Lock()
	defer l.mu.Unlock()

	if msg.ProviderMessageID != "" {
		if existing, ok := l.messages[msg.ProviderMessageID]; ok {
			return existing.ID, false, nil
		}
		msg.ID = msg.ProviderMessageID
	} else {
		msg.ID = uuid.NewString()
	}

	l.messages[msg.ID] = msg
	return msg.ID, true, nil
}

func (l *inMemoryLedger) Get(_ context.Context, id string) (Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	msg, ok := l.messages[id]
	if !ok {
		return Message{}, ErrNotFound
	}
	return msg, nil
}

func (l *inMemoryLedger) SaveResponse(_ context.Context, resp Response) (string, error) {
	resp.ID = uuid.NewString()
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now().UTC()
	}
	if resp.Status == "" {
		resp.Status = StatusFor(resp.Parsed)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.responses[resp.ID] = resp
	return resp.ID, nil
}
