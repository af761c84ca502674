package services

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"

	"surfalert-service/internal/logging"
	"surfalert-service/internal/models"
)

type fakeConn struct {
	messages [][]byte
	err      error
	closed   bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestWebSocketManagerPublish(t *testing.T) {
	m := NewWebSocketManager(logging.NewWithWriter(io.Discard, "error"))
	mine, other := &fakeConn{}, &fakeConn{}
	m.AddConnection("a@example.com", mine)
	m.AddConnection("b@example.com", other)

	event := models.AlertEvent{ID: uuid.New(), Email: "a@example.com", SpotSlug: "taiba", Score: 90}
	m.Publish(event)

	if len(mine.messages) != 1 || len(other.messages) != 0 {
		t.Fatalf("messages = %d / %d", len(mine.messages), len(other.messages))
	}
	var got models.AlertEvent
	if err := json.Unmarshal(mine.messages[0], &got); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	if got.ID != event.ID || got.Score != 90 {
		t.Errorf("payload = %+v", got)
	}
}

func TestWebSocketManagerDropsBrokenConnections(t *testing.T) {
	m := NewWebSocketManager(logging.NewWithWriter(io.Discard, "error"))
	broken := &fakeConn{err: errors.New("broken pipe")}
	m.AddConnection("a@example.com", broken)

	m.SendToEmail("a@example.com", []byte("hi"))

	if !broken.closed || m.Count("a@example.com") != 0 {
		t.Errorf("closed = %v, count = %d", broken.closed, m.Count("a@example.com"))
	}
}

func TestWebSocketManagerLimit(t *testing.T) {
	m := NewWebSocketManager(logging.NewWithWriter(io.Discard, "error"))
	for i := 0; i < maxConnsPerEmail; i++ {
		if !m.AddConnection("a@example.com", &fakeConn{}) {
			t.Fatalf("connection %d rejected", i)
		}
	}
	if m.AddConnection("a@example.com", &fakeConn{}) {
		t.Error("connection over the limit accepted")
	}
	c := &fakeConn{}
	m.AddConnection("b@example.com", c)
	m.RemoveConnection("b@example.com", c)
	if m.Count("b@example.com") != 0 {
		t.Error("connection not removed")
	}
}
