package transport

import (
	"net/http"

	"github.com/ds124wfegd/eventmarket/internal/service"
	"github.com/ds124wfegd/eventmarket/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type BannerHandler struct {
	bannerService service.BannerService
}

func NewBannerHandler(bannerService service.BannerService) *BannerHandler {
	return &BannerHandler{bannerService: bannerService}
}

func (h *BannerHandler) GeneratePresignedURL(c *gin.Context) {
	var input service.PresignRequest
	if err := bind(c, &input); err != nil {
		respondError(c, err)
		return
	}

	upload, err := h.bannerService.GeneratePresignedURL(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, upload)
}

func (h *BannerHandler) ProcessBanner(c *gin.Context) {
	var input service.ProcessBannerRequest
	if err := bind(c, &input); err != nil {
		respondError(c, err)
		return
	}
	input.OrganizerID = middleware.OrganizerFrom(c).ID

	banner, err := h.bannerService.ProcessBanner(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err,
			previousStepIncomplete("Complete event details (title, date, venue) before uploading images"),
			eventNotFound(fixedMessage("This event doesn't exist or you don't have access to it")),
			databaseError(),
		)
		return
	}

	c.JSON(http.StatusOK, banner)
}
