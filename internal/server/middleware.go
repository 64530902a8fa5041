package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/homebuddy-dev/homebuddy/internal/auth"
	"github.com/homebuddy-dev/homebuddy/internal/models"
)

const (
	bearerPrefix    = "Bearer "
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	sessionKey      = "session"
	userKey         = "user"
)

// credentialsDetail is the 401 detail for any token problem
const credentialsDetail = "Could not validate credentials"

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
)

// abortWithDetail writes the {"detail": ...} error body the web client reads
func abortWithDetail(c *gin.Context, statusCode int, detail string) {
	c.AbortWithStatusJSON(statusCode, gin.H{"detail": detail})
}

// requestIDMiddleware echoes the caller's X-Request-ID or assigns a new one
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = ulid.Make().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set(sessionKey, sessionData)
}

// GetSessionData returns the session set by JWTAuthMiddleware
func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

func currentUser(c *gin.Context) *models.User {
	user, _ := c.MustGet(userKey).(*models.User)
	return user
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

// JWTAuthMiddleware validates the bearer token and loads the user it names.
// Tokens for the configured administrator carry the subject "admin" and
// resolve to the seeded admin account.
func JWTAuthMiddleware(db *gorm.DB, adminEmail string, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			log.Warn().Err(err).Msg("Rejected request without usable token")
			abortWithDetail(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to validate JWT token")
			abortWithDetail(c, http.StatusUnauthorized, credentialsDetail)
			return
		}

		var user models.User
		if claims.Subject == models.RoleAdmin && claims.Role == models.RoleAdmin {
			err = db.Where("email = ?", models.NormalizeEmail(adminEmail)).First(&user).Error
		} else {
			err = models.FindByID(db, claims.Subject, &user)
		}
		if err != nil {
			log.Warn().Err(err).Str("subject", claims.Subject).Msg("Token subject not found")
			abortWithDetail(c, http.StatusUnauthorized, credentialsDetail)
			return
		}

		setSession(c, &auth.SessionData{
			UserID: user.ID,
			Email:  user.Email,
			Role:   claims.Role,
		})
		c.Set(userKey, &user)

		c.Next()
	}
}
