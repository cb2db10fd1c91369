package websocket

import (
	"errors"
	"net/http"
)

// ErrHubStopped is returned when a connection arrives after the hub shut down
var ErrHubStopped = errors.New("feed hub stopped")

// ServeWS upgrades an authorized request and subscribes the connection to the
// department's feed. Authorization is the caller's job.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, departmentID, userID int64) error {
	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("departmentID", departmentID).
			Int64("userID", userID).
			Msg("Failed to upgrade connection to WebSocket")
		return err
	}

	client := &Client{
		hub:          h,
		conn:         conn,
		send:         make(chan []byte, 64),
		userID:       userID,
		departmentID: departmentID,
		logger:       h.logger,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return ErrHubStopped
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Int64("departmentID", departmentID).
		Int64("userID", userID).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("Feed connection established")
	return nil
}
