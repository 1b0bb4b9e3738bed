// Package sse streams live report activity to the dispatch dashboard over
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"trashtrack_backend/platform/logger"
)

// EventType represents different types of SSE events
type EventType string

const (
	EventReportSubmitted     EventType = "report_submitted"
	EventReportStatusChanged EventType = "report_status_changed"
	EventReportScored        EventType = "report_scored"
)

// Event represents an SSE event payload
type Event struct {
	Type     EventType   `json:"type"`
	ReportID uuid.UUID   `json:"reportId"`
	Message  string      `json:"message,omitempty"`
	Data     interface{} `json:"data,omitempty"`
}

// client represents a connected SSE client
type client struct {
	userID uuid.UUID
	events chan Event
}

// Service manages SSE connections and event broadcasting
type Service struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	log     *logger.Logger
}

// New creates a new SSE service
func New(log *logger.Logger) *Service {
	return &Service{
		clients: make(map[*client]struct{}),
		log:     log,
	}
}

func (s *Service) addClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
}

func (s *Service) removeClient(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.events)
}

// Clients returns the number of connected clients.
func (s *Service) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends an event to every connected client. Slow clients drop events.
func (s *Service) Broadcast(event Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for c := range s.clients {
		select {
		case c.events <- event:
		default:
			s.log.Warn("sse buffer full, dropping event", "userId", c.userID, "type", event.Type)
		}
	}
	s.log.Debug("sse event broadcast", "type", event.Type, "clients", len(s.clients))
}

// Handler returns a Gin handler for SSE connections
func (s *Service) Handler(getUserID func(*gin.Context) (uuid.UUID, bool)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := getUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")

		cl := &client{
			userID: userID,
			events: make(chan Event, 32),
		}
		s.addClient(cl)
		defer s.removeClient(cl)

		c.SSEvent("connected", gin.H{"userId": userID})
		c.Writer.Flush()

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				return
			case event, ok := <-cl.events:
				if !ok {
					return
				}
				data, _ := json.Marshal(event)
				c.SSEvent(string(event.Type), string(data))
				c.Writer.Flush()
			}
		}
	}
}

// Close disconnects every client.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		close(c.events)
	}
	s.clients = make(map[*client]struct{})
}
