package api

import (
	"errors"
	"net/http"

	reqdto "ticketgate/internal/handler/dto/request"
	resdto "ticketgate/internal/handler/dto/response"
	"ticketgate/internal/handler/middleware"
	"ticketgate/internal/pkg/errs"
	"ticketgate/internal/usecase/commands"
	"ticketgate/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EventHandler struct {
	events              commands.EventCommands
	availabilityQueries queries.AvailabilityQueries
	eventQueries        queries.EventQueries
}

func NewEventHandler(events commands.EventCommands, availability queries.AvailabilityQueries, eventQueries queries.EventQueries) *EventHandler {
	return &EventHandler{
		events:              events,
		availabilityQueries: availability,
		eventQueries:        eventQueries,
	}
}

// @Summary Create event
// @Description Register a draft event with its pricing sections
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateEventRequest true "Event layout"
// @Success 201 {object} resdto.CreateEventResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /events [post]
func (h *EventHandler) CreateEvent(c *gin.Context) {
	organizerID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	var req reqdto.CreateEventRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.events.CreateEvent(c.Request.Context(), req.ToInput(organizerID))
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidSectionLayout), errors.Is(err, errs.ErrDomainValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Invalid event layout",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, resdto.FromCreateEventResult(result))
}

// @Summary Publish event
// @Description Materialize the fixed inventory unit set after the credit gate clears
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} resdto.PublishEventResponse
// @Failure 400 {object} map[string]string
// @Failure 402 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /events/{id}/publish [post]
func (h *EventHandler) Publish(c *gin.Context) {
	organizerID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid event ID format",
		})
		return
	}

	result, err := h.events.Publish(c.Request.Context(), id, organizerID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Event not found",
			})
		case errors.Is(err, errs.ErrEventAlreadyLive):
			c.JSON(http.StatusConflict, gin.H{
				"error": "Event is already published",
			})
		case errors.Is(err, errs.ErrInsufficientCredits):
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error": "Insufficient organizer credits",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromPublishResult(result))
}

// @Summary Event availability
// @Description Per-unit effective availability; lapsed holds read as available
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} resdto.EventAvailabilityResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /events/{id}/availability [get]
func (h *EventHandler) Availability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid event ID format",
		})
		return
	}

	view, err := h.availabilityQueries.EventAvailability(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrEventNotFound), isNotFound(err):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Event not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromEventAvailabilityView(view))
}

// @Summary List own events
// @Description List the calling organizer's events, newest first
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]resdto.EventResponse
// @Router /events [get]
func (h *EventHandler) ListEvents(c *gin.Context) {
	organizerID, ok := middleware.GetSubjectID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	views, err := h.eventQueries.ListByOrganizer(c.Request.Context(), organizerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	events := make([]*resdto.EventResponse, len(views))
	for i, v := range views {
		events[i] = resdto.FromEventView(v)
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// @Summary Get event
// @Description Get one event with its required unit cardinality
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} resdto.EventResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /events/{id} [get]
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid event ID format",
		})
		return
	}

	view, err := h.eventQueries.GetByID(c.Request.Context(), id)
	if err != nil {
		switch {
		case isNotFound(err):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Event not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromEventView(view))
}
