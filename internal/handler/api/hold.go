package api

import (
	"errors"
	"net/http"

	reqdto "ticketgate/internal/handler/dto/request"
	resdto "ticketgate/internal/handler/dto/response"
	"ticketgate/internal/pkg/errs"
	"ticketgate/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type HoldHandler struct {
	holds commands.HoldCommands
}

func NewHoldHandler(holds commands.HoldCommands) *HoldHandler {
	return &HoldHandler{holds: holds}
}

// @Summary Hold units
// @Description Place an all-or-nothing session hold on the requested units
// @Tags holds
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body reqdto.HoldRequest true "Hold request"
// @Success 200 {object} resdto.HoldResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]any
// @Router /events/{id}/holds [post]
func (h *HoldHandler) Hold(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid event ID format",
		})
		return
	}

	var req reqdto.HoldRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	result, err := h.holds.Hold(c.Request.Context(), eventID, req.NormalizedUnitIDs(), req.SessionID)
	if err != nil {
		var conflict *commands.InventoryConflictError
		switch {
		case errors.As(err, &conflict):
			c.JSON(http.StatusConflict, gin.H{
				"error":            "Some units are unavailable",
				"unavailableUnits": conflict.UnavailableUnits,
			})
		case errors.Is(err, errs.ErrUnitNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Unknown unit",
			})
		case errors.Is(err, errs.ErrDomainValidation):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Domain validation failed",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromHoldResult(result))
}

// @Summary Release held units
// @Description Release holds owned by the session; holds of other sessions are untouched
// @Tags holds
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body reqdto.ReleaseRequest true "Release request"
// @Success 204
// @Failure 400 {object} map[string]string
// @Router /events/{id}/holds [delete]
func (h *HoldHandler) Release(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid event ID format",
		})
		return
	}

	var req reqdto.ReleaseRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	if err := h.holds.Release(c.Request.Context(), eventID, req.NormalizedUnitIDs(), req.SessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return
	}

	c.Status(http.StatusNoContent)
}
