package handler

import (
	"context"
	"sync"
	"time"

	"index-pulse/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	streamPingEvery = 45 * time.Second
	streamReadWait  = 90 * time.Second
	streamQueue     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StreamMessage is one frame pushed to /ws subscribers.
type StreamMessage struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type subscriber struct {
	out  chan StreamMessage
	done chan struct{}
}

// Hub fans newly computed views out to websocket subscribers. Slow
// subscribers drop frames instead of blocking the publisher.
type Hub struct {
	log  zerolog.Logger
	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:  log.With().Str("component", "stream-hub").Logger(),
		subs: make(map[*subscriber]struct{}),
	}
}

func (h *Hub) PublishMarket(ctx context.Context, v domain.MarketView) error {
	h.broadcast(StreamMessage{Type: "market", Data: v})
	return nil
}

func (h *Hub) PublishPreOpen(ctx context.Context, v domain.PreOpenView) error {
	h.broadcast(StreamMessage{Type: "preopen", Data: v})
	return nil
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) broadcast(msg StreamMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		select {
		case s.out <- msg:
		default:
		}
	}
}

func (h *Hub) add() *subscriber {
	s := &subscriber{out: make(chan StreamMessage, streamQueue), done: make(chan struct{})}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
	close(s.done)
}

// Stream godoc
// @Summary      Live market stream
// @Description  Websocket pushing {"type":"market"|"preopen","data":...} whenever a view is recomputed
// @Tags         market
// @Router       /ws [get]
func (h *Handler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.hub.add()
	defer h.hub.remove(sub)

	sub.out <- StreamMessage{Type: "market", Data: h.market.MarketView(c.Request.Context())}

	go func() {
		ping := time.NewTicker(streamPingEvery)
		defer ping.Stop()
		for {
			select {
			case msg := <-sub.out:
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			case <-ping.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-sub.done:
				return
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(streamReadWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamReadWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
