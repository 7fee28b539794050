package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const keepaliveInterval = 30 * time.Second

// handleEvents streams realtime events to the caller over Server-Sent
// Events. The subscription lives exactly as long as the connection: it is
// registered here and removed when the client goes away.
func (s *Server) handleEvents(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "streaming unsupported"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	sub := s.hub.Subscribe(currentUser(c).ID)
	defer s.hub.Unsubscribe(sub)

	fmt.Fprintf(c.Writer, "event: connected\ndata: {}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(c.Writer, ": keepalive\n\n")
			flusher.Flush()
		case event, open := <-sub.Events():
			if !open {
				return
			}
			data, err := json.Marshal(event.Payload)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.Name, data)
			flusher.Flush()
		}
	}
}
