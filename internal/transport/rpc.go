package transport

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/internal/transport/middleware"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// rpcError is the body of every failed procedure call. Defined is true only
// for errors the procedure declares.
type rpcError struct {
	Defined bool   `json:"defined"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// definedError declares one named failure of a procedure. Target is matched
// with errors.Is; Data, when set, builds the payload from the matched error.
type definedError struct {
	Code    string
	Status  int
	Target  error
	Message string
	Data    func(err error) any
}

func databaseError() definedError {
	return definedError{
		Code:    "DATABASE_ERROR",
		Status:  http.StatusInternalServerError,
		Target:  entity.ErrDatabaseError,
		Message: "Database operation failed",
	}
}

func messageData(err error) any {
	return gin.H{"message": externalMessage(err)}
}

func fixedMessage(message string) func(error) any {
	return func(error) any {
		return gin.H{"message": message}
	}
}

func organizerAlreadyExists() definedError {
	return definedError{
		Code:    "ORGANIZER_ALREADY_EXISTS",
		Status:  http.StatusConflict,
		Target:  entity.ErrOrganizerAlreadyExists,
		Message: "You already have an organizer profile",
	}
}

func paystackError() definedError {
	return definedError{
		Code:    "PAYSTACK_ERROR",
		Status:  http.StatusBadGateway,
		Target:  entity.ErrPaystack,
		Message: "Payment provider request failed",
		Data:    messageData,
	}
}

func eventNotFound(data func(error) any) definedError {
	return definedError{
		Code:    "EVENT_NOT_FOUND",
		Status:  http.StatusNotFound,
		Target:  entity.ErrEventNotFound,
		Message: "Event not found",
		Data:    data,
	}
}

func previousStepIncomplete(message string) definedError {
	return definedError{
		Code:    "PREVIOUS_STEP_INCOMPLETE",
		Status:  http.StatusPreconditionFailed,
		Target:  entity.ErrPreviousStepIncomplete,
		Message: "Previous step incomplete",
		Data:    fixedMessage(message),
	}
}

// externalMessage is the caller-safe text of a third-party failure.
func externalMessage(err error) string {
	var ext *entity.ExternalError
	if errors.As(err, &ext) {
		return ext.Error()
	}
	return err.Error()
}

func respondError(c *gin.Context, err error, declared ...definedError) {
	if issues := validationIssues(err); issues != nil {
		c.JSON(http.StatusBadRequest, rpcError{
			Code:    "BAD_REQUEST",
			Status:  http.StatusBadRequest,
			Message: "Input validation failed",
			Data:    gin.H{"issues": issues},
		})
		return
	}

	for _, d := range declared {
		if !errors.Is(err, d.Target) {
			continue
		}

		body := rpcError{
			Defined: true,
			Code:    d.Code,
			Status:  d.Status,
			Message: d.Message,
		}
		if body.Message == "" {
			body.Message = d.Target.Error()
		}
		if d.Data != nil {
			body.Data = d.Data(err)
		}

		_ = c.Error(err)
		c.JSON(d.Status, body)
		return
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"path":       c.Request.URL.Path,
		"request_id": middleware.RequestID(c),
	}).Error("Unhandled procedure error")

	c.JSON(http.StatusInternalServerError, rpcError{
		Code:    "INTERNAL_SERVER_ERROR",
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
	})
}

func validationIssues(err error) entity.ValidationErrors {
	var many entity.ValidationErrors
	if errors.As(err, &many) {
		return many
	}
	var one *entity.ValidationError
	if errors.As(err, &one) {
		return entity.ValidationErrors{one}
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind decodes the JSON body into dst and runs its validate tags. An empty
// body leaves dst untouched.
func bind(c *gin.Context, dst any) error {
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(dst); err != nil {
			return entity.NewValidationError("", "Malformed request body")
		}
	}
	return validateStruct(dst)
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	issues := make(entity.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, entity.NewValidationError(fe.Field(), fieldMessage(fe)))
	}
	return issues
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "uuid":
		return "Must be a valid UUID"
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fe.Param())
	case "numeric":
		return "Must contain only digits"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("Failed the %s check", fe.Tag())
	}
}
