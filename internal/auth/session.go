package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ds124wfegd/eventmarket/internal/entity"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

// SessionProvider looks up the caller's session from request headers.
// A missing or invalid token is not an error: the caller is anonymous.
type SessionProvider interface {
	GetSession(ctx context.Context, r *http.Request) (*entity.Session, error)
}

type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type JWTSessionProvider struct {
	secret     []byte
	cookieName string
	expiration time.Duration
}

func NewJWTSessionProvider(secret, cookieName string, expiration time.Duration) *JWTSessionProvider {
	return &JWTSessionProvider{
		secret:     []byte(secret),
		cookieName: cookieName,
		expiration: expiration,
	}
}

func (p *JWTSessionProvider) GetSession(_ context.Context, r *http.Request) (*entity.Session, error) {
	token := p.tokenFromRequest(r)
	if token == "" {
		return nil, nil
	}

	claims, err := p.ValidateToken(token)
	if err != nil {
		return nil, nil
	}

	session := &entity.Session{
		User: entity.SessionUser{
			ID:    claims.Subject,
			Name:  claims.Name,
			Email: claims.Email,
		},
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

func (p *JWTSessionProvider) tokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie, err := r.Cookie(p.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// GenerateToken issues a session token for user.
func (p *JWTSessionProvider) GenerateToken(user entity.SessionUser) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:  user.Name,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

func (p *JWTSessionProvider) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
