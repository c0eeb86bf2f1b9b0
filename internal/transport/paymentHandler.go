package transport

import (
	"net/http"

	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) GetAllBanks(c *gin.Context) {
	banks, err := h.paymentService.GetAllBanks(c.Request.Context())
	if err != nil {
		respondError(c, err, paystackError())
		return
	}

	c.JSON(http.StatusOK, gin.H{"banks": banks})
}

func (h *PaymentHandler) VerifyBankAccount(c *gin.Context) {
	var input bankAccountInput
	if err := bind(c, &input); err != nil {
		respondError(c, err)
		return
	}

	resolved, err := h.paymentService.VerifyBankAccount(c.Request.Context(), input.AccountNumber, input.BankCode)
	if err != nil {
		respondError(c, err, definedError{
			Code:    "VERIFICATION_FAILED",
			Status:  http.StatusUnprocessableEntity,
			Target:  entity.ErrBankVerification,
			Message: "Bank account verification failed",
			Data:    messageData,
		})
		return
	}

	c.JSON(http.StatusOK, resolved)
}
