package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/internal/service"
	"github.com/ds124wfegd/eventmarket/internal/transport/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	toastCookie    = "toast"
	toastMaxAgeSec = 5 * 60
)

type EventHandler struct {
	eventService service.EventService
	webURL       string
}

func NewEventHandler(eventService service.EventService, webURL string) *EventHandler {
	return &EventHandler{eventService: eventService, webURL: webURL}
}

type eventIDInput struct {
	ID string `json:"id" validate:"required,uuid"`
}

type wizardStepInput struct {
	ID   string `json:"id" validate:"required,uuid"`
	Step string `json:"step"`
}

func slugAlreadyTaken() definedError {
	return definedError{
		Code:    "SLUG_ALREADY_TAKEN",
		Status:  http.StatusConflict,
		Target:  entity.ErrSlugAlreadyTaken,
		Message: "This URL slug is already in use",
	}
}

func (h *EventHandler) GetEventDraft(c *gin.Context) {
	var input eventIDInput
	if err := bind(c, &input); err != nil {
		respondError(c, err)
		return
	}

	organizer := middleware.OrganizerFrom(c)
	draft, err := h.eventService.GetEventDraft(c.Request.Context(), organizer.ID, input.ID)
	if errors.Is(err, entity.ErrEventNotFound) {
		c.JSON(http.StatusOK, gin.H{"event": nil})
		return
	}
	if err != nil {
		respondError(c, err, databaseError())
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": draft})
}

func (h *EventHandler) SaveEventDetails(c *gin.Context) {
	var input entity.EventDetails
	if err := bind(c, &input); err != nil {
		respondError(c, err)
		return
	}
	if err := validate.Var(input.ID, "required,uuid"); err != nil {
		respondError(c, entity.NewValidationError("id", "Must be a valid UUID"))
		return
	}

	organizer := middleware.OrganizerFrom(c)
	event, err := h.eventService.SaveEventDetails(c.Request.Context(), organizer.ID, &input)
	if err != nil {
		respondError(c, err,
			slugAlreadyTaken(),
			eventNotFound(nil),
			databaseError(),
		)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event})
}

func (h *EventHandler) ResolveWizardStep(c *gin.Context) {
	var input wizardStepInput
	if err := bind(c, &input); err != nil {
		respondError(c, err)
		return
	}

	organizer := middleware.OrganizerFrom(c)
	resolution, err := h.eventService.ResolveWizardStep(c.Request.Context(), organizer.ID, input.ID, input.Step)
	if err != nil {
		respondError(c, err, databaseError())
		return
	}

	c.JSON(http.StatusOK, resolution)
}

// CreateEventWizard gates browser navigation to a wizard step. A blocked step
// redirects to the first incomplete one and leaves a toast cookie for the web app.
func (h *EventHandler) CreateEventWizard(c *gin.Context) {
	eventID := c.Param("id")
	if err := validate.Var(eventID, "required,uuid"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	organizer := middleware.OrganizerFrom(c)
	resolution, err := h.eventService.ResolveWizardStep(c.Request.Context(), organizer.ID, eventID, c.Query("step"))
	if err != nil {
		logrus.WithError(err).WithField("event_id", eventID).Error("Failed to resolve wizard step")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if resolution.Notice != nil {
		if value, err := json.Marshal(resolution.Notice); err == nil {
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     toastCookie,
				Value:    url.PathEscape(string(value)),
				Path:     "/",
				MaxAge:   toastMaxAgeSec,
				SameSite: http.SameSiteLaxMode,
			})
		}
	}

	target := fmt.Sprintf("%s/organizer/events/%s/create-event?step=%s", h.webURL, url.PathEscape(eventID), resolution.Step)
	c.Redirect(http.StatusSeeOther, target)
}
