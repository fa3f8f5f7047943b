// FeedHub fans new community posts out to websocket subscribers. The Run
// loop owns the client set; connections are added through Register and
// removed through Unregister, and anything sent on broadcast goes to every
// client whose province filter matches.
package services

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Subscribers only send control frames.
	maxMessageSize = 512
)

type FeedEventType string

const (
	FeedPostCreated FeedEventType = "post_created"
	FeedPostDeleted FeedEventType = "post_deleted"
)

type FeedEvent struct {
	Type   FeedEventType `json:"type"`
	PostID string        `json:"postId"`
	Post   any           `json:"post,omitempty"`
}

type feedMessage struct {
	province string
	data     []byte
}

type FeedHub struct {
	clients    map[*FeedClient]bool
	broadcast  chan feedMessage
	Register   chan *FeedClient
	Unregister chan *FeedClient
	done       chan struct{}
	count      atomic.Int64
}

func NewFeedHub() *FeedHub {
	return &FeedHub{
		clients:    make(map[*FeedClient]bool),
		broadcast:  make(chan feedMessage, 64),
		Register:   make(chan *FeedClient),
		Unregister: make(chan *FeedClient),
		done:       make(chan struct{}),
	}
}

// ClientCount is safe to call from any goroutine.
func (h *FeedHub) ClientCount() int {
	return int(h.count.Load())
}

// Run serves the hub until ctx is cancelled. A hub is not restartable.
func (h *FeedHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.count.Store(0)
			return

		case client := <-h.Register:
			h.clients[client] = true
			h.count.Store(int64(len(h.clients)))
			log.Printf("Feed: subscriber connected. Count: %d", len(h.clients))

		case client := <-h.Unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.count.Store(int64(len(h.clients)))
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.Province != "" && client.Province != msg.province {
					continue
				}
				select {
				case client.Send <- msg.data:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.count.Store(int64(len(h.clients)))
		}
	}
}

// Publish queues an event for subscribers. province is the post's province
// slug, empty for posts without one. It never blocks the caller.
func (h *FeedHub) Publish(province string, event FeedEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Feed: failed to encode event: %v", err)
		return
	}
	select {
	case h.broadcast <- feedMessage{province: province, data: data}:
	default:
		log.Printf("Feed: broadcast queue full, dropping %s for %s", event.Type, event.PostID)
	}
}

type FeedClient struct {
	Hub      *FeedHub
	Conn     *websocket.Conn
	Send     chan []byte
	Province string
}

// Attach registers an upgraded connection and starts its pumps. It returns
// nil, leaving conn to the caller, once the hub has stopped.
func (h *FeedHub) Attach(conn *websocket.Conn, province string) *FeedClient {
	client := &FeedClient{
		Hub:      h,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Province: province,
	}
	select {
	case h.Register <- client:
	case <-h.done:
		return nil
	}
	go client.WritePump()
	go client.ReadPump()
	return client
}

// ReadPump only drains control frames so pongs are processed and a closed
// connection is noticed.
func (c *FeedClient) ReadPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Feed: read error: %v", err)
			}
			return
		}
	}
}

func (c *FeedClient) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
