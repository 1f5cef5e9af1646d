package realtime

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Topic names pushed to subscribers. Messages use MessagesTopic(chatID).
const (
	TopicChats = "chats"
	TopicUsers = "users"
)

func MessagesTopic(chatID string) string {
	return "messages/" + chatID
}

// Frame is what subscribers receive: the topic plus a full-collection
// snapshot, never an incremental diff.
type Frame struct {
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
}

type envelope struct {
	topic string
	data  []byte
}

type subscription struct {
	client *Client
	topic  string
}

// Hub fans published snapshots out to WebSocket subscribers by topic. All
// state is owned by the Run goroutine; every mutation goes through a
// channel.
type Hub struct {
	register    chan *Client
	unregister  chan *Client
	subscribe   chan subscription
	unsubscribe chan subscription
	publish     chan envelope

	clients map[*Client]map[string]struct{}
	topics  map[string]map[*Client]struct{}

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		publish:     make(chan envelope, 64),
		clients:     make(map[*Client]map[string]struct{}),
		topics:      make(map[string]map[*Client]struct{}),
		logger:      logger,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
			}
			return

		case client := <-h.register:
			h.clients[client] = make(map[string]struct{})

		case client := <-h.unregister:
			h.drop(client)

		case sub := <-h.subscribe:
			if topics, ok := h.clients[sub.client]; ok {
				topics[sub.topic] = struct{}{}
				if h.topics[sub.topic] == nil {
					h.topics[sub.topic] = make(map[*Client]struct{})
				}
				h.topics[sub.topic][sub.client] = struct{}{}
			}

		case sub := <-h.unsubscribe:
			if topics, ok := h.clients[sub.client]; ok {
				delete(topics, sub.topic)
			}
			if clients, ok := h.topics[sub.topic]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(h.topics, sub.topic)
				}
			}

		case msg := <-h.publish:
			for client := range h.topics[msg.topic] {
				select {
				case client.send <- msg.data:
				default:
					// slow consumer, drop it
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	if topics, ok := h.clients[client]; ok {
		for topic := range topics {
			if clients, ok := h.topics[topic]; ok {
				delete(clients, client)
				if len(clients) == 0 {
					delete(h.topics, topic)
				}
			}
		}
		delete(h.clients, client)
		close(client.send)
	}
}

// Publish pushes a snapshot to every subscriber of topic. Marshal failures
// are logged and the frame is dropped; there is nothing a caller could do
// with the error.
func (h *Hub) Publish(topic string, payload interface{}) {
	data, err := json.Marshal(Frame{Topic: topic, Payload: payload})
	if err != nil {
		h.logger.Error("publish: marshal failed", zap.String("topic", topic), zap.Error(err))
		return
	}
	h.publish <- envelope{topic: topic, data: data}
}
