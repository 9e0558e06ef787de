package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"barbearia/internal/model"
	"barbearia/internal/service/appointment"
	"barbearia/internal/service/notification"
)

type Handler struct {
	service    *appointment.Service
	dispatcher notification.Service
}

func NewHandler(service *appointment.Service, dispatcher notification.Service) *Handler {
	return &Handler{service: service, dispatcher: dispatcher}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	agendamentos := r.Group("/agendamentos")
	{
		agendamentos.GET("", h.ListAppointments)
		agendamentos.POST("", h.CreateAppointment)
		agendamentos.GET("/data/:date", h.ListAppointmentsByDate)
		agendamentos.GET("/:id", h.GetAppointment)
		agendamentos.PUT("/:id", h.UpdateAppointment)
		agendamentos.DELETE("/:id", h.DeleteAppointment)
		agendamentos.DELETE("", h.DeleteAllAppointments)
	}

	r.GET("/estatisticas", h.GetStatistics)
	r.POST("/campanhas", h.SendCampaign)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	apt, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, apt)
}

func (h *Handler) ListAppointmentsByDate(c *gin.Context) {
	appointments, err := h.service.ListByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, appointments)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	apt, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, apt)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	apt, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, apt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	removed, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, removed)
}

func (h *Handler) DeleteAllAppointments(c *gin.Context) {
	count, err := h.service.DeleteAll(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": count})
}

func (h *Handler) GetStatistics(c *gin.Context) {
	stats, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type campaignRequest struct {
	Recipients []string `json:"recipients" binding:"required,min=1"`
	Subject    string   `json:"subject" binding:"required"`
	Body       string   `json:"body" binding:"required"`
}

// SendCampaign runs a bulk send synchronously and reports per-recipient
// outcomes. Individual failures are counted, never fatal.
func (h *Handler) SendCampaign(c *gin.Context) {
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result := h.dispatcher.SendBulk(c.Request.Context(), req.Recipients, req.Subject, req.Body)
	c.JSON(http.StatusOK, result)
}
