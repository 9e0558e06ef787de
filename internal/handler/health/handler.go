package health

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"barbearia/internal/repository"
)

type Handler struct {
	repo repository.AppointmentRepository
}

func NewHandler(repo repository.AppointmentRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/status", h.Status)
}

// Status is the liveness payload the admin page polls.
func (h *Handler) Status(c *gin.Context) {
	total, err := h.repo.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"reason": "store unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "online",
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"totalAgendamentos": total,
	})
}
