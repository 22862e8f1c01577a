package ws

import (
	"testing"

	"golang.org/x/time/rate"
)

// === CLIENT TESTS ===

func TestNewClient(t *testing.T) {
	limiter := rate.NewLimiter(1, 1)
	client := NewClient(nil, limiter)

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.ID == "" {
		t.Error("Expected connection id to be generated")
	}
	if client.send == nil {
		t.Error("Expected client.send channel to be initialized")
	}
	if client.limiter != limiter {
		t.Error("Expected limiter to be kept")
	}

	other := NewClient(nil, nil)
	if other.ID == client.ID {
		t.Error("Expected unique connection ids")
	}
}

func TestClient_Send(t *testing.T) {
	client := newMockClient()

	if !client.Send([]byte("test message")) {
		t.Fatal("Expected send to succeed")
	}

	select {
	case received := <-client.send:
		if string(received) != "test message" {
			t.Errorf("Expected 'test message', got %s", string(received))
		}
	default:
		t.Error("Expected message to be in send channel")
	}
}

func TestClient_SendBufferFull(t *testing.T) {
	// Create client with small buffer
	client := &Client{
		ID:   "small",
		send: make(chan []byte, 2),
	}

	client.Send([]byte("msg1"))
	client.Send([]byte("msg2"))

	// This should not block (buffer full handling)
	if client.Send([]byte("msg3")) {
		t.Error("Expected third send to report a full buffer")
	}

	<-client.send
	<-client.send

	select {
	case <-client.send:
		t.Error("Expected no more messages (third should be dropped)")
	default:
	}
}

func TestClient_SendAfterClose(t *testing.T) {
	client := newMockClient()
	client.close()
	client.close() // idempotent

	if client.Send([]byte("late")) {
		t.Error("Expected send on closed client to fail")
	}
}

func TestClient_Allow(t *testing.T) {
	unlimited := newMockClient()
	for i := 0; i < 100; i++ {
		if !unlimited.allow() {
			t.Fatal("Expected client without limiter to allow everything")
		}
	}

	limited := NewClient(nil, rate.NewLimiter(rate.Every(1e12), 2))
	if !limited.allow() || !limited.allow() {
		t.Error("Expected burst to be allowed")
	}
	if limited.allow() {
		t.Error("Expected event beyond burst to be rejected")
	}
}
