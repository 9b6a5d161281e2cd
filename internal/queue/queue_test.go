package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestInMemoryPublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	body, _ := json.Marshal(map[string]string{"id": "evt-1"})
	if err := q.Publish(ctx, Message{Type: "interaction", Body: body}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("Consume: %v", err)
	}

	select {
	case msg := <-msgs:
		if msg.Type != "interaction" {
			t.Errorf("type = %q", msg.Type)
		}
		var payload map[string]string
		if err := json.Unmarshal(msg.Body, &payload); err != nil || payload["id"] != "evt-1" {
			t.Errorf("body = %s, err = %v", msg.Body, err)
		}
	case <-time.After(time.Second):
		t.Fatal("no message consumed")
	}
}

func TestInMemoryPublishHonoursContext(t *testing.T) {
	q := NewInMemory(0)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// No consumer; a full queue must not block forever.
	if err := q.Publish(ctx, Message{Type: "interaction"}); err == nil {
		t.Fatal("expected ctx error on full queue")
	}
}
