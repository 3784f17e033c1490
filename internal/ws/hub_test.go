package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/peseat/api/internal/auth"
	"github.com/peseat/api/internal/enum"
	"github.com/peseat/api/internal/service"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, room string) *Client {
	return &Client{
		hub:  hub,
		room: room,
		send: make(chan []byte, 256),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHubRegistration(t *testing.T) {
	hub := startHub(t)
	client := mockClient(hub, enum.RoomStaff)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if !hub.rooms[enum.RoomStaff][client] {
		t.Fatal("client not registered in staff room")
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := startHub(t)
	room := CustomerRoom(uuid.New())
	client1 := mockClient(hub, room)
	client2 := mockClient(hub, room)

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)
	if n := hub.ClientCount(room); n != 2 {
		t.Fatalf("expected 2 clients, got %d", n)
	}

	hub.unregister <- client1
	time.Sleep(10 * time.Millisecond)
	if n := hub.ClientCount(room); n != 1 {
		t.Fatalf("expected 1 client after first unregister, got %d", n)
	}

	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if hub.rooms[room] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
}

func TestPublishReachesStaffAndOwnerOnly(t *testing.T) {
	hub := startHub(t)

	owner := uuid.New()
	staff1 := mockClient(hub, enum.RoomStaff)
	staff2 := mockClient(hub, enum.RoomStaff)
	ownerClient := mockClient(hub, CustomerRoom(owner))
	otherCustomer := mockClient(hub, CustomerRoom(uuid.New()))
	for _, c := range []*Client{staff1, staff2, ownerClient, otherCustomer} {
		hub.register <- c
	}
	time.Sleep(10 * time.Millisecond)

	ev := service.OrderEvent{
		Type:              enum.EventOrderReady,
		OrderID:           uuid.New(),
		UserID:            owner,
		OrderNumber:       "PES-12",
		FulfillmentStatus: "ready",
		OccurredAt:        time.Now(),
	}
	if err := hub.Publish(context.Background(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for i, c := range []*Client{staff1, staff2, ownerClient} {
		select {
		case msg := <-c.send:
			var received Event
			if err := json.Unmarshal(msg, &received); err != nil {
				t.Fatalf("client%d: failed to unmarshal: %v", i+1, err)
			}
			if received.Type != "order.ready" {
				t.Errorf("client%d: expected type 'order.ready', got '%s'", i+1, received.Type)
			}
			var payload service.OrderEvent
			if err := json.Unmarshal(received.Payload, &payload); err != nil {
				t.Fatalf("client%d: payload: %v", i+1, err)
			}
			if payload.OrderNumber != "PES-12" {
				t.Errorf("client%d: order number: got %q", i+1, payload.OrderNumber)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("client%d did not receive message", i+1)
		}
	}

	select {
	case <-otherCustomer.send:
		t.Fatal("another customer must not see this order")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	hub := startHub(t)
	slow := &Client{hub: hub, room: enum.RoomStaff, send: make(chan []byte)} // unbuffered, never read
	hub.register <- slow
	time.Sleep(10 * time.Millisecond)

	if err := hub.Broadcast(context.Background(), enum.RoomStaff, Event{Type: "ping"}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if n := hub.ClientCount(enum.RoomStaff); n != 0 {
		t.Fatalf("slow client should be dropped, %d left", n)
	}
	if _, ok := <-slow.send; ok {
		t.Fatal("send channel should be closed")
	}
}

func TestHubStopsWithContext(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := mockClient(hub, enum.RoomStaff)
	hub.register <- client
	cancel()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	if _, ok := <-client.send; ok {
		t.Fatal("client channel should be closed on shutdown")
	}
	err := hub.Publish(context.Background(), service.OrderEvent{Type: enum.EventOrderPlaced})
	if !errors.Is(err, ErrHubStopped) {
		t.Fatalf("expected ErrHubStopped, got %v", err)
	}
	if hub.join(mockClient(hub, enum.RoomStaff)) {
		t.Fatal("join should fail after shutdown")
	}
}

func TestServeWS(t *testing.T) {
	const secret = "test-secret"
	hub := startHub(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWS(hub, secret, w, r)
	}))
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")

	t.Run("missing token", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err == nil {
			t.Fatal("expected dial failure")
		}
		if resp == nil || resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %v", resp)
		}
	})

	t.Run("customer receives own order updates", func(t *testing.T) {
		userID := uuid.New()
		token, _ := auth.GenerateToken(secret, userID, auth.RoleCustomer)
		conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()

		room := CustomerRoom(userID)
		deadline := time.Now().Add(time.Second)
		for hub.ClientCount(room) == 0 && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}

		ev := service.OrderEvent{Type: enum.EventOrderCollected, UserID: userID, OrderNumber: "PES-3"}
		if err := hub.Publish(context.Background(), ev); err != nil {
			t.Fatalf("publish: %v", err)
		}

		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if received.Type != "order.collected" {
			t.Errorf("type: got %q", received.Type)
		}
	})
}
