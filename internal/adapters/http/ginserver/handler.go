package ginserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler serves the board over HTTP.
type Handler struct {
	board *Board
}

// NewHandler wraps a board.
func NewHandler(b *Board) *Handler {
	return &Handler{board: b}
}

// Ping answers liveness probes.
func (h *Handler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// Status returns the board state. Before the first poll completes it answers 503.
func (h *Handler) Status(c *gin.Context) {
	st := h.board.Status()
	if st.Last == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no poll completed yet"})
		return
	}
	c.JSON(http.StatusOK, st)
}
