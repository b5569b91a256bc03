package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

type SweepClient struct {
	hub  *SweepHub
	conn *websocket.Conn
	send chan []byte
}

// SweepHub streams sweep progress to subscribed clients. Dropped messages are
// acceptable: progress is monotone and the next update supersedes the last.
type SweepHub struct {
	mu        sync.Mutex
	clients   map[*SweepClient]struct{}
	broadcast chan sweepStatus
}

func NewSweepHub() *SweepHub {
	return &SweepHub{
		clients:   make(map[*SweepClient]struct{}),
		broadcast: make(chan sweepStatus, 32),
	}
}

func (h *SweepHub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case payload := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				client.sendJSON(wsMessage{Type: "sweep", Payload: mustMarshal(payload)})
			}
			h.mu.Unlock()
		}
	}
}

func (h *SweepHub) Publish(status sweepStatus) {
	select {
	case h.broadcast <- status:
	default:
	}
}

func (h *SweepHub) Register(c *SweepClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *SweepHub) Unregister(c *SweepClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (c *SweepClient) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func serveSweepWS(hub *SweepHub, w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &SweepClient{hub: hub, conn: conn, send: make(chan []byte, 16)}
	hub.Register(client)

	client.sendJSON(wsMessage{Type: "sweep", Payload: mustMarshal(sweepRunner.Status())})

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			return
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			hub.Unregister(client)
			return
		}
	}
}
