package transport

import (
	"net/http"

	"github.com/ds124wfegd/eventmarket/internal/service"
	"github.com/ds124wfegd/eventmarket/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	ticketService service.TicketService
}

func NewTicketHandler(ticketService service.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

type listTicketTypesInput struct {
	EventID string `json:"eventId" validate:"required,uuid"`
}

func (h *TicketHandler) CreateTicketType(c *gin.Context) {
	var input service.CreateTicketTypeRequest
	if err := bind(c, &input); err != nil {
		respondError(c, err)
		return
	}

	organizer := middleware.OrganizerFrom(c)
	ticketType, err := h.ticketService.CreateTicketType(c.Request.Context(), organizer.ID, &input)
	if err != nil {
		respondError(c, err,
			previousStepIncomplete("Add event details and a banner before creating tickets"),
			eventNotFound(fixedMessage("This event doesn't exist or you don't have access to it")),
			databaseError(),
		)
		return
	}

	c.JSON(http.StatusOK, ticketType)
}

func (h *TicketHandler) ListTicketTypes(c *gin.Context) {
	var input listTicketTypesInput
	if err := bind(c, &input); err != nil {
		respondError(c, err)
		return
	}

	organizer := middleware.OrganizerFrom(c)
	ticketTypes, err := h.ticketService.ListTicketTypes(c.Request.Context(), organizer.ID, input.EventID)
	if err != nil {
		respondError(c, err,
			eventNotFound(nil),
			databaseError(),
		)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticketTypes": ticketTypes})
}
