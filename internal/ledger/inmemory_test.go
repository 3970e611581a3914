package ledger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/goaltext/goaltext/internal/parser"
)

func TestInMemoryLedger_AppendIsIdempotentOnProviderID(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	first, created, err := l.Append(ctx, Message{Body: "Walk the dog - 5", From: "+16502530000", ProviderMessageID: "SM123"})
	if err != nil {
		t.Fatalf("first append: %v", err)
	}
	if !created {
		t.Fatalf("expected first append to create a record")
	}
	second, created, err := l.Append(ctx, Message{Body: "something else", From: "+16502530000", ProviderMessageID: "SM123"})
	if err != nil {
		t.Fatalf("second append: %v", err)
	}
	if created {
		t.Fatalf("expected repeated provider id to report an existing record")
	}
	if first != second {
		t.Fatalf("expected same record id, got %s and %s", first, second)
	}

	stored, err := l.Get(ctx, first)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Body != "Walk the dog - 5" {
		t.Fatalf("stored message was overwritten: %q", stored.Body)
	}
	if got := len(l.(*inMemoryLedger).messages); got != 1 {
		t.Fatalf("expected 1 stored message, got %d", got)
	}
}

func TestInMemoryLedger_AppendWithoutProviderIDAlwaysAppends(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	a, _, err := l.Append(ctx, Message{Body: "hi", From: "+16502530000"})
	if err != nil {
		t.Fatalf("append a: %v", err)
	}
	b, created, err := l.Append(ctx, Message{Body: "hi", From: "+16502530000"})
	if err != nil {
		t.Fatalf("append b: %v", err)
	}
	if a == b || !created {
		t.Fatalf("expected a new record, got %s twice (created=%v)", a, created)
	}

	msg, err := l.Get(ctx, a)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if msg.Source != SourceTwilio || msg.ReceivedAt.IsZero() {
		t.Fatalf("expected defaults to be applied, got %+v", msg)
	}
}

func TestInMemoryLedger_ConcurrentDuplicateDeliveries(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	const workers = 10
	ids := make([]string, workers)
	var creates atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, created, err := l.Append(ctx, Message{Body: fmt.Sprintf("retry %d", i), ProviderMessageID: "SMdup"})
			if err != nil {
				t.Errorf("append %d failed: %v", i, err)
			}
			if created {
				creates.Add(1)
			}
			ids[i] = id
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		if id != "SMdup" {
			t.Fatalf("expected provider id as record id, got %s", id)
		}
	}
	if got := len(l.(*inMemoryLedger).messages); got != 1 {
		t.Fatalf("expected 1 stored message, got %d", got)
	}
	if got := creates.Load(); got != 1 {
		t.Fatalf("expected exactly one delivery to create the record, got %d", got)
	}
}

func TestInMemoryLedger_GetUnknown(t *testing.T) {
	l := NewInMemory()
	if _, err := l.Get(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryLedger_SaveResponseStatus(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	id, err := l.SaveResponse(ctx, Response{From: "+16502530000", Parsed: parser.Request{Help: true}})
	if err != nil {
		t.Fatalf("save response: %v", err)
	}
	stored := l.(*inMemoryLedger).responses[id]
	if stored.Status != ResponseParsed {
		t.Fatalf("expected %s, got %s", ResponseParsed, stored.Status)
	}

	id, err = l.SaveResponse(ctx, Response{From: "+16502530000"})
	if err != nil {
		t.Fatalf("save empty response: %v", err)
	}
	if got := l.(*inMemoryLedger).responses[id].Status; got != ResponseEmpty {
		t.Fatalf("expected %s, got %s", ResponseEmpty, got)
	}
}
