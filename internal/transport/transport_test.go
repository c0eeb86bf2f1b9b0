package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/auth"
	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	testUserID  = "user-1"
	testEventID = "0190a5d2-0000-7000-8000-0000000000e1"
)

var testOrganizer = &entity.Organizer{ID: "org-1", OwnerID: testUserID, Name: "Afrobeats Live"}

type testServer struct {
	router     *gin.Engine
	sessions   *auth.JWTSessionProvider
	organizers *mockOrganizerService
	payments   *mockPaymentService
	events     *mockEventService
	banners    *mockBannerService
	tickets    *mockTicketService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		sessions:   auth.NewJWTSessionProvider("test-secret", "session_token", time.Hour),
		organizers: new(mockOrganizerService),
		payments:   new(mockPaymentService),
		events:     new(mockEventService),
		banners:    new(mockBannerService),
		tickets:    new(mockTicketService),
	}

	handlers := &Handlers{
		Organizer: NewOrganizerHandler(s.organizers, s.payments),
		Payment:   NewPaymentHandler(s.payments),
		Event:     NewEventHandler(s.events, "http://web.test"),
		Banner:    NewBannerHandler(s.banners),
		Ticket:    NewTicketHandler(s.tickets),
	}
	cfg := RouterConfig{AllowedOrigins: []string{"http://web.test"}, Timeout: 5 * time.Second}
	s.router = InitRoutes(cfg, handlers, s.sessions, s.organizers)
	return s
}

func (s *testServer) token(t *testing.T) string {
	t.Helper()
	token, err := s.sessions.GenerateToken(entity.SessionUser{ID: testUserID, Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	return token
}

func (s *testServer) asOrganizer() {
	s.organizers.On("GetOrganizerProfile", mock.Anything, testUserID).Return(testOrganizer, nil)
}

func (s *testServer) call(t *testing.T, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) rpcError {
	t.Helper()
	var body rpcError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w := s.call(t, "/rpc/healthCheck", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"OK"`, w.Body.String())
}

func TestGetCurrentOrganizerProfile(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		s := newTestServer(t)

		w := s.call(t, "/rpc/organizer/getCurrentOrganizerProfile", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"session":null,"organizer":null}`, w.Body.String())
	})

	t.Run("user without organizer", func(t *testing.T) {
		s := newTestServer(t)
		s.organizers.On("GetOrganizerProfile", mock.Anything, testUserID).Return(nil, entity.ErrOrganizerNotFound)

		w := s.call(t, "/rpc/organizer/getCurrentOrganizerProfile", s.token(t), nil)
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Session   *entity.Session   `json:"session"`
			Organizer *entity.Organizer `json:"organizer"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotNil(t, body.Session)
		assert.Equal(t, testUserID, body.Session.User.ID)
		assert.Nil(t, body.Organizer)
	})

	t.Run("database failure", func(t *testing.T) {
		s := newTestServer(t)
		s.organizers.On("GetOrganizerProfile", mock.Anything, testUserID).
			Return(nil, fmt.Errorf("%w: %w", entity.ErrDatabaseError, errors.New("connection refused")))

		w := s.call(t, "/rpc/organizer/getCurrentOrganizerProfile", s.token(t), nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		body := decodeError(t, w)
		assert.True(t, body.Defined)
		assert.Equal(t, "DATABASE_ERROR", body.Code)
		assert.NotContains(t, body.Message, "connection refused")
	})
}

func TestBecomeOrganizer(t *testing.T) {
	input := map[string]any{"organizationName": "Afrobeats Live", "accountNumber": "0123456789", "bankCode": "044"}

	t.Run("requires a session", func(t *testing.T) {
		s := newTestServer(t)

		w := s.call(t, "/rpc/organizer/becomeOrganizer", "", input)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Code)
		s.organizers.AssertNotCalled(t, "BecomeOrganizer", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already exists", func(t *testing.T) {
		s := newTestServer(t)
		s.organizers.On("BecomeOrganizer", mock.Anything, testUserID, mock.Anything).Return(nil, entity.ErrOrganizerAlreadyExists)

		w := s.call(t, "/rpc/organizer/becomeOrganizer", s.token(t), input)
		assert.Equal(t, http.StatusConflict, w.Code)

		body := decodeError(t, w)
		assert.True(t, body.Defined)
		assert.Equal(t, "ORGANIZER_ALREADY_EXISTS", body.Code)
	})

	t.Run("bank verification failure echoes the input", func(t *testing.T) {
		s := newTestServer(t)
		s.organizers.On("BecomeOrganizer", mock.Anything, testUserID, mock.Anything).
			Return(nil, &entity.ExternalError{Kind: entity.ErrBankVerification, Message: "Could not resolve account name"})

		w := s.call(t, "/rpc/organizer/becomeOrganizer", s.token(t), input)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		body := decodeError(t, w)
		assert.Equal(t, "BANK_VERIFICATION_ERROR", body.Code)
		assert.Equal(t, map[string]any{"accountNumber": "0123456789", "bankCode": "044"}, body.Data)
	})

	t.Run("recipient warning is a success", func(t *testing.T) {
		s := newTestServer(t)
		result := &service.BecomeOrganizerResult{
			Organizer: testOrganizer,
			Warning:   &service.Warning{Code: service.RecipientCreationWarning, Message: "Failed to create transfer recipient"},
		}
		s.organizers.On("BecomeOrganizer", mock.Anything, testUserID, mock.MatchedBy(func(req *service.BecomeOrganizerRequest) bool {
			return req.OrganizationName == "Afrobeats Live" && req.AccountNumber != nil && *req.AccountNumber == "0123456789"
		})).Return(result, nil)

		w := s.call(t, "/rpc/organizer/becomeOrganizer", s.token(t), input)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), service.RecipientCreationWarning)
	})

	t.Run("validation issues", func(t *testing.T) {
		s := newTestServer(t)
		s.organizers.On("BecomeOrganizer", mock.Anything, testUserID, mock.Anything).
			Return(nil, entity.ValidationErrors{entity.NewValidationError("organizationName", "Organization name must be at least 2 characters")})

		w := s.call(t, "/rpc/organizer/becomeOrganizer", s.token(t), map[string]any{"organizationName": "A"})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		body := decodeError(t, w)
		assert.False(t, body.Defined)
		assert.Equal(t, "BAD_REQUEST", body.Code)
		assert.Contains(t, w.Body.String(), "Organization name must be at least 2 characters")
	})
}

func TestVerifyBankAccountInput(t *testing.T) {
	s := newTestServer(t)

	w := s.call(t, "/rpc/payment/verifyBankAccount", "", map[string]any{"accountNumber": "123", "bankCode": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Data struct {
			Issues []entity.ValidationError `json:"issues"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	fields := map[string]bool{}
	for _, issue := range body.Data.Issues {
		fields[issue.Field] = true
	}
	assert.True(t, fields["accountNumber"])
	assert.True(t, fields["bankCode"])
	s.payments.AssertNotCalled(t, "VerifyBankAccount", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentErrors(t *testing.T) {
	t.Run("banks provider failure", func(t *testing.T) {
		s := newTestServer(t)
		s.payments.On("GetAllBanks", mock.Anything).
			Return(nil, &entity.ExternalError{Kind: entity.ErrPaystack, Message: "Failed to fetch banks from Paystack"})

		w := s.call(t, "/rpc/payment/getAllBanks", "", nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)

		body := decodeError(t, w)
		assert.Equal(t, "PAYSTACK_ERROR", body.Code)
		assert.Equal(t, map[string]any{"message": "Failed to fetch banks from Paystack"}, body.Data)
	})

	t.Run("verification failed", func(t *testing.T) {
		s := newTestServer(t)
		s.payments.On("VerifyBankAccount", mock.Anything, "0123456789", "044").
			Return(nil, &entity.ExternalError{Kind: entity.ErrBankVerification, Message: "Could not resolve account name"})

		w := s.call(t, "/rpc/payment/verifyBankAccount", "", map[string]any{"accountNumber": "0123456789", "bankCode": "044"})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "VERIFICATION_FAILED", decodeError(t, w).Code)
	})
}

func TestOrganizerProcedures(t *testing.T) {
	t.Run("user without organizer is unauthorized", func(t *testing.T) {
		s := newTestServer(t)
		s.organizers.On("GetOrganizerProfile", mock.Anything, testUserID).Return(nil, entity.ErrOrganizerNotFound)

		w := s.call(t, "/rpc/event/getEventDraft", s.token(t), map[string]any{"id": testEventID})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		s.events.AssertNotCalled(t, "GetEventDraft", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing draft is null", func(t *testing.T) {
		s := newTestServer(t)
		s.asOrganizer()
		s.events.On("GetEventDraft", mock.Anything, testOrganizer.ID, testEventID).Return(nil, entity.ErrEventNotFound)

		w := s.call(t, "/rpc/event/getEventDraft", s.token(t), map[string]any{"id": testEventID})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"event":null}`, w.Body.String())
	})

	t.Run("slug taken", func(t *testing.T) {
		s := newTestServer(t)
		s.asOrganizer()
		s.events.On("SaveEventDetails", mock.Anything, testOrganizer.ID, mock.Anything).Return(nil, entity.ErrSlugAlreadyTaken)

		w := s.call(t, "/rpc/event/saveEventDetails", s.token(t), map[string]any{"id": testEventID, "title": "Design Workshop", "slug": "taken"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "SLUG_ALREADY_TAKEN", decodeError(t, w).Code)
	})

	t.Run("banner before details", func(t *testing.T) {
		s := newTestServer(t)
		s.asOrganizer()
		s.banners.On("ProcessBanner", mock.Anything, mock.MatchedBy(func(req *service.ProcessBannerRequest) bool {
			return req.OrganizerID == testOrganizer.ID
		})).Return(nil, entity.ErrPreviousStepIncomplete)

		w := s.call(t, "/rpc/banner/processBanner", s.token(t), map[string]any{"eventId": testEventID, "originalFilename": "banners/x/a.jpg"})
		assert.Equal(t, http.StatusPreconditionFailed, w.Code)

		body := decodeError(t, w)
		assert.Equal(t, "PREVIOUS_STEP_INCOMPLETE", body.Code)
		assert.Equal(t, map[string]any{"message": "Complete event details (title, date, venue) before uploading images"}, body.Data)
	})

	t.Run("undeclared failures are internal", func(t *testing.T) {
		s := newTestServer(t)
		s.asOrganizer()
		s.banners.On("ProcessBanner", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: write: %w", entity.ErrStorage, errors.New("bucket unavailable")))

		w := s.call(t, "/rpc/banner/processBanner", s.token(t), map[string]any{"eventId": testEventID, "originalFilename": "banners/x/a.jpg"})
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		body := decodeError(t, w)
		assert.False(t, body.Defined)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", body.Code)
		assert.NotContains(t, w.Body.String(), "bucket unavailable")
	})

	t.Run("event id must be a uuid", func(t *testing.T) {
		s := newTestServer(t)
		s.asOrganizer()

		w := s.call(t, "/rpc/ticket/listTicketTypes", s.token(t), map[string]any{"eventId": "not-a-uuid"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		s.tickets.AssertNotCalled(t, "ListTicketTypes", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCreateEventWizardRedirect(t *testing.T) {
	s := newTestServer(t)
	s.asOrganizer()

	notice := &entity.Notice{Type: "info", Title: "Complete previous step first", Description: "Please complete media before continuing."}
	s.events.On("ResolveWizardStep", mock.Anything, testOrganizer.ID, testEventID, "tickets").Return(&entity.StepResolution{
		Requested:  entity.StepTickets,
		Step:       entity.StepMedia,
		Redirected: true,
		Notice:     notice,
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/organizer/events/"+testEventID+"/create-event?step=tickets", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: s.token(t)})
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "http://web.test/organizer/events/"+testEventID+"/create-event?step=media", w.Header().Get("Location"))

	var toast *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "toast" {
			toast = cookie
		}
	}
	require.NotNil(t, toast)
	assert.Equal(t, 300, toast.MaxAge)

	raw, err := url.PathUnescape(toast.Value)
	require.NoError(t, err)
	var got entity.Notice
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, *notice, got)
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		checks map[string]func(ctx context.Context) error
		want   int
	}{
		{
			name:   "all dependencies up",
			checks: map[string]func(ctx context.Context) error{"postgres": func(context.Context) error { return nil }},
			want:   http.StatusOK,
		},
		{
			name:   "dependency down",
			checks: map[string]func(ctx context.Context) error{"postgres": func(context.Context) error { return errors.New("connection refused") }},
			want:   http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := RouterConfig{AllowedOrigins: []string{"http://web.test"}, HealthChecks: tt.checks}
			router := InitRoutes(cfg, &Handlers{}, auth.NewJWTSessionProvider("s", "session_token", time.Hour), new(mockOrganizerService))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
