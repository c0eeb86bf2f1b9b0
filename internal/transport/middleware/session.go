package middleware

import (
	"errors"
	"net/http"

	"github.com/ds124wfegd/eventmarket/internal/auth"
	"github.com/ds124wfegd/eventmarket/internal/entity"
	"github.com/ds124wfegd/eventmarket/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	sessionKey   = "session"
	organizerKey = "organizer"
)

func SessionFrom(c *gin.Context) *entity.Session {
	if v, ok := c.Get(sessionKey); ok {
		if session, ok := v.(*entity.Session); ok {
			return session
		}
	}
	return nil
}

func OrganizerFrom(c *gin.Context) *entity.Organizer {
	if v, ok := c.Get(organizerKey); ok {
		if organizer, ok := v.(*entity.Organizer); ok {
			return organizer
		}
	}
	return nil
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"defined": false,
		"code":    code,
		"status":  status,
		"message": message,
	})
}

// Session attaches the caller's session, if any. Anonymous requests pass through.
func Session(provider auth.SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := provider.GetSession(c.Request.Context(), c.Request)
		if err != nil {
			logrus.WithError(err).WithField("request_id", RequestID(c)).Warn("Session lookup failed")
		}
		if session != nil {
			c.Set(sessionKey, session)
		}
		c.Next()
	}
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionFrom(c) == nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}
		c.Next()
	}
}

// RequireOrganizer must run after RequireAuth. Users without an organizer
// profile are treated as unauthenticated.
func RequireOrganizer(organizers service.OrganizerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if session == nil {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}

		organizer, err := organizers.GetOrganizerProfile(c.Request.Context(), session.User.ID)
		if errors.Is(err, entity.ErrOrganizerNotFound) {
			abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
			return
		}
		if err != nil {
			logrus.WithError(err).WithField("request_id", RequestID(c)).Error("Failed to load organizer for request")
			abort(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
			return
		}

		c.Set(organizerKey, organizer)
		c.Next()
	}
}
