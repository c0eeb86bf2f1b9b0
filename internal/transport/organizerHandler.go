package transport

import (
	"errors"
	"net/http"

	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/internal/service"
	"github.com/ds124wfegd/eventmarket/internal/transport/middleware"

	"github.com/gin-gonic/gin"
)

type OrganizerHandler struct {
	organizerService service.OrganizerService
	paymentService   service.PaymentService
}

func NewOrganizerHandler(organizerService service.OrganizerService, paymentService service.PaymentService) *OrganizerHandler {
	return &OrganizerHandler{organizerService: organizerService, paymentService: paymentService}
}

type bankAccountInput struct {
	AccountNumber string `json:"accountNumber" validate:"required,len=10,numeric"`
	BankCode      string `json:"bankCode" validate:"required"`
}

func bankVerificationError(accountNumber, bankCode string) definedError {
	return definedError{
		Code:    "BANK_VERIFICATION_ERROR",
		Status:  http.StatusUnprocessableEntity,
		Target:  entity.ErrBankVerification,
		Message: "Could not verify bank account",
		Data: func(error) any {
			return gin.H{"accountNumber": accountNumber, "bankCode": bankCode}
		},
	}
}

// GetCurrentOrganizerProfile is public: anonymous callers get nulls.
func (h *OrganizerHandler) GetCurrentOrganizerProfile(c *gin.Context) {
	session := middleware.SessionFrom(c)
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil, "organizer": nil})
		return
	}

	organizer, err := h.organizerService.GetOrganizerProfile(c.Request.Context(), session.User.ID)
	if errors.Is(err, entity.ErrOrganizerNotFound) {
		c.JSON(http.StatusOK, gin.H{"session": session, "organizer": nil})
		return
	}
	if err != nil {
		respondError(c, err, databaseError())
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session, "organizer": organizer})
}

func (h *OrganizerHandler) VerifyBankAccount(c *gin.Context) {
	var input bankAccountInput
	if err := bind(c, &input); err != nil {
		respondError(c, err)
		return
	}

	resolved, err := h.paymentService.VerifyBankAccount(c.Request.Context(), input.AccountNumber, input.BankCode)
	if err != nil {
		respondError(c, err,
			bankVerificationError(input.AccountNumber, input.BankCode),
			paystackError(),
		)
		return
	}

	c.JSON(http.StatusOK, resolved)
}

func (h *OrganizerHandler) BecomeOrganizer(c *gin.Context) {
	var input service.BecomeOrganizerRequest
	if err := bind(c, &input); err != nil {
		respondError(c, err)
		return
	}

	session := middleware.SessionFrom(c)
	result, err := h.organizerService.BecomeOrganizer(c.Request.Context(), session.User.ID, &input)
	if err != nil {
		var accountNumber, bankCode string
		if input.AccountNumber != nil {
			accountNumber = *input.AccountNumber
		}
		if input.BankCode != nil {
			bankCode = *input.BankCode
		}

		respondError(c, err,
			organizerAlreadyExists(),
			bankVerificationError(accountNumber, bankCode),
			paystackError(),
			databaseError(),
		)
		return
	}

	c.JSON(http.StatusOK, result)
}
