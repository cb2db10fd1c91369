package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventAttendanceMarked is published whenever a lecture's attendance is saved
const EventAttendanceMarked = "attendance.marked"

// Event is pushed to every feed client of a department
type Event struct {
	Type         string    `json:"type"`
	DepartmentID int64     `json:"departmentId"`
	LectureID    int64     `json:"lectureId"`
	DivisionID   int64     `json:"divisionId"`
	SubjectID    int64     `json:"subjectId"`
	Present      int       `json:"present"`
	Absent       int       `json:"absent"`
	Timestamp    time.Time `json:"timestamp"`
}

// Hub maintains the feed clients of each department and fans events out to them
type Hub struct {
	// Registered clients organized by department ID
	clients map[int64]map[*Client]bool

	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	listenersMu sync.RWMutex
	listeners   []chan *Event

	// Called with the total connection count after every change
	onConnections func(int)

	allowedOrigins []string
	logger         zerolog.Logger
}

// NewHub creates a new Hub. An empty allowedOrigins list accepts any origin.
func NewHub(logger zerolog.Logger, allowedOrigins []string) *Hub {
	return &Hub{
		clients:        make(map[int64]map[*Client]bool),
		broadcast:      make(chan *Event, 256),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		done:           make(chan struct{}),
		allowedOrigins: allowedOrigins,
		logger:         logger,
	}
}

// OnConnectionsChanged installs a callback receiving the open connection count
func (h *Hub) OnConnectionsChanged(fn func(int)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onConnections = fn
}

// Run handles registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.departmentID]; !ok {
		h.clients[client.departmentID] = make(map[*Client]bool)
	}
	h.clients[client.departmentID][client] = true
	h.notifyConnections()

	h.logger.Info().
		Int64("departmentID", client.departmentID).
		Int64("userID", client.userID).
		Msg("Feed client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropClient(client)
}

// dropClient removes a client; the caller holds h.mu
func (h *Hub) dropClient(client *Client) {
	clients, ok := h.clients[client.departmentID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.departmentID)
	}
	h.notifyConnections()

	h.logger.Info().
		Int64("departmentID", client.departmentID).
		Int64("userID", client.userID).
		Msg("Feed client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.dropClient(client)
		}
	}
}

func (h *Hub) notifyConnections() {
	if h.onConnections == nil {
		return
	}
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	h.onConnections(total)
}

func (h *Hub) broadcastEvent(event *Event) {
	h.notifyListeners(event)

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error().Err(err).Int64("departmentID", event.DepartmentID).Msg("Failed to marshal feed event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[event.DepartmentID]
	if !ok {
		return
	}
	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Slow client; drop it rather than stall the department
			h.dropClient(client)
		}
	}

	h.logger.Debug().
		Int64("departmentID", event.DepartmentID).
		Str("type", event.Type).
		Int("clientCount", len(clients)).
		Msg("Feed event broadcasted")
}

func (h *Hub) notifyListeners(event *Event) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.listeners {
		select {
		case listener <- event:
		default:
			h.logger.Warn().Msg("Skipped slow feed listener")
		}
	}
}

// Publish queues an event for broadcast. It never blocks: when the queue is
// full the event is dropped and logged.
func (h *Hub) Publish(event *Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn().Int64("departmentID", event.DepartmentID).Int64("lectureID", event.LectureID).Msg("Feed queue full, event dropped")
	}
}

// ClientsCount returns the number of feed clients of a department
func (h *Hub) ClientsCount(departmentID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[departmentID])
}

// TotalClients returns the number of open feed connections
func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

// AddListener registers a channel that receives every published event
func (h *Hub) AddListener(listener chan *Event) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, listener)
}

// RemoveListener unregisters a listener added with AddListener
func (h *Hub) RemoveListener(listener chan *Event) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.listeners {
		if l == listener {
			h.listeners[i] = h.listeners[len(h.listeners)-1]
			h.listeners = h.listeners[:len(h.listeners)-1]
			break
		}
	}
}
