// Package sse provides Server-Sent Events support for real-time notifications.
package sse

import (
	"net/http"
	"sync"
	"time"

	"leadnest/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventNotification EventType = "notification"

	clientBuffer      = 32
	heartbeatInterval = 25 * time.Second
)

// Event represents an SSE event payload
type Event struct {
	Type       EventType   `json:"type"`
	BusinessID uuid.UUID   `json:"-"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

// client represents a connected SSE client
type client struct {
	userID     uuid.UUID
	businessID uuid.UUID
	events     chan Event
}

// Service manages SSE connections and event broadcasting
type Service struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*client // userID -> clients
	log     *logger.Logger
}

func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[uuid.UUID][]*client),
		log:     log,
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.userID] = append(s.clients[c.userID], c)
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients := s.clients[c.userID]
	for i, cl := range clients {
		if cl == c {
			s.clients[c.userID] = append(clients[:i], clients[i+1:]...)
			break
		}
	}
	if len(s.clients[c.userID]) == 0 {
		delete(s.clients, c.userID)
	}
}

// Publish sends an event to the user's streams opened for the event's
// business. A full buffer drops the event for that stream.
func (s *Service) Publish(userID uuid.UUID, event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.clients[userID] {
		if event.BusinessID != uuid.Nil && c.businessID != event.BusinessID {
			continue
		}
		select {
		case c.events <- event:
		default:
			s.log.Warn("sse buffer full, dropping event", "userId", userID, "type", event.Type)
		}
	}
}

// connected reports the number of open streams for a user.
func (s *Service) connected(userID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients[userID])
}

// Stream serves one SSE connection for the given user and business until the
// client goes away.
func (s *Service) Stream(c *gin.Context, userID, businessID uuid.UUID) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	cl := &client{userID: userID, businessID: businessID, events: make(chan Event, clientBuffer)}
	s.addClient(cl)
	defer s.removeClient(cl)
	s.log.Debug("sse stream opened", "userId", userID, "streams", s.connected(userID))

	c.SSEvent("connected", gin.H{"userId": userID, "businessId": businessID})
	c.Writer.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case <-heartbeat.C:
			c.SSEvent("ping", "")
			c.Writer.Flush()
		case event := <-cl.events:
			c.SSEvent(string(event.Type), event)
			c.Writer.Flush()
		}
	}
}
