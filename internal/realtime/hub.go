// Package realtime fans accepted list writes out to live view sessions.
//
// Subscriptions come in two flavours, both keyed by a topic string:
//
//	code:AAA-999  — an open list view; receives that list's snapshots
//	owner:<id>    — an owner's dashboard; receives snapshots of every list
//	                the principal owns, so the "my lists" page stays live
//
// After every accepted mutation the services hand the fresh list to the hub,
// which renders the per-actor projection for each subscriber and pushes it —
// so a session sees its own writes echoed back in the next snapshot, and
// everyone else's too. Deleting a list pushes a terminal "list_deleted"
// snapshot and closes the code topic's subscriptions; dashboard sessions
// stay open, the dead list just vanishes from them. Closing the socket (or
// navigating away) unsubscribes; in-flight writes are not rolled back.
package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rmacedo/presenteio/internal/claim"
	"github.com/rmacedo/presenteio/internal/model"
	"github.com/rmacedo/presenteio/internal/view"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer bounds the per-subscriber queue. A subscriber that can't
	// drain it in time is dropped rather than blocking the broadcast.
	sendBuffer = 8
)

// Snapshot types pushed to subscribers.
const (
	TypeListUpdate  = "list_update"
	TypeListDeleted = "list_deleted"
)

// snapshot is what subscribers receive on every change.
type snapshot struct {
	Type string        `json:"type"`
	List view.ListView `json:"list"`
	Time int64         `json:"time"`
}

type subscriber struct {
	conn  *websocket.Conn
	send  chan []byte
	actor claim.Actor
	topic string
}

func codeTopic(listCode string) string { return "code:" + listCode }
func ownerTopic(ownerID string) string { return "owner:" + ownerID }

// Hub tracks the live subscribers per topic.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	logger *slog.Logger

	upgrader websocket.Upgrader
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Cookies already gate who the actor is; the projection never
			// contains anything the actor couldn't fetch over plain GET.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ListChanged implements service.Broadcaster. Every subscriber of the list's
// code topic and of the owner's dashboard topic gets a projection rendered
// for its own actor — the owner's snapshot and a visitor's snapshot differ
// in affordances, not just in data.
func (h *Hub) ListChanged(list *model.List) {
	h.push(list, TypeListUpdate)
}

// ListDeleted pushes a terminal snapshot, then closes every subscription on
// the dead list's code. Dashboard subscriptions survive: the owner may still
// have other lists.
func (h *Hub) ListDeleted(list *model.List) {
	h.push(list, TypeListDeleted)

	h.mu.Lock()
	var gone []*subscriber
	for sub := range h.subs[codeTopic(list.Code)] {
		gone = append(gone, sub)
	}
	for _, sub := range gone {
		h.dropLocked(sub)
	}
	h.mu.Unlock()
}

func (h *Hub) push(list *model.List, snapshotType string) {
	h.mu.RLock()
	now := time.Now().UnixMilli()
	var slow []*subscriber
	for _, topic := range []string{codeTopic(list.Code), ownerTopic(list.OwnerID)} {
		for sub := range h.subs[topic] {
			payload, err := json.Marshal(snapshot{
				Type: snapshotType,
				List: view.Render(list, sub.actor, view.DefaultOptions()),
				Time: now,
			})
			if err != nil {
				h.logger.Error("failed to encode snapshot", slog.String("error", err.Error()))
				continue
			}
			select {
			case sub.send <- payload:
			default:
				// Slow consumer: drop it once the read lock is released.
				slow = append(slow, sub)
			}
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		h.drop(sub)
	}
}

// Subscribe upgrades the request to a websocket and registers the session
// for the given list code. Returns after the handshake; pumps run in their
// own goroutines until the peer goes away.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, listCode string, actor claim.Actor) error {
	return h.subscribe(w, r, codeTopic(listCode), actor)
}

// SubscribeOwner registers a dashboard session: the subscriber receives
// snapshots of every list the principal owns.
func (h *Hub) SubscribeOwner(w http.ResponseWriter, r *http.Request, ownerID string, actor claim.Actor) error {
	return h.subscribe(w, r, ownerTopic(ownerID), actor)
}

func (h *Hub) subscribe(w http.ResponseWriter, r *http.Request, topic string, actor claim.Actor) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := &subscriber{
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		actor: actor,
		topic: topic,
	}

	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*subscriber]struct{})
	}
	h.subs[topic][sub] = struct{}{}
	n := len(h.subs[topic])
	h.mu.Unlock()

	h.logger.Info("subscription opened",
		slog.String("topic", topic),
		slog.Int("subscribers", n),
	)

	go sub.writePump()
	go h.readPump(sub)
	return nil
}

// Subscribers reports how many sessions currently watch a list code.
func (h *Hub) Subscribers(listCode string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[codeTopic(listCode)])
}

// OwnerSubscribers reports how many dashboard sessions a principal has open.
func (h *Hub) OwnerSubscribers(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[ownerTopic(ownerID)])
}

// readPump discards inbound frames — the socket is push-only — and detects
// the peer closing.
func (h *Hub) readPump(sub *subscriber) {
	defer h.drop(sub)

	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (sub *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	h.dropLocked(sub)
	h.mu.Unlock()
}

// dropLocked is idempotent: the send channel is closed only while the
// subscriber is still registered, so racing drop paths (peer close, slow
// consumer, list deletion) cannot double-close it. The connection itself is
// closed by the write pump after it drains the queue, so a terminal
// snapshot still reaches the peer.
func (h *Hub) dropLocked(sub *subscriber) {
	set, ok := h.subs[sub.topic]
	if !ok {
		return
	}
	if _, present := set[sub]; !present {
		return
	}
	delete(set, sub)
	close(sub.send)
	if len(set) == 0 {
		delete(h.subs, sub.topic)
	}
}
