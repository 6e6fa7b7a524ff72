// Package auth checks access tokens issued by the hosted auth service.
// Tokens are HMAC-signed JWTs whose subject is the user id.
package auth

import (
	"bitbucket.org/sotavant/quick-swapp/internal/logger"
	"bitbucket.org/sotavant/quick-swapp/internal/models"
	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"net/http"
	"strings"
	"time"
)

const userKey = "auth.user_id"

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

func Verify(secret []byte, token string) (models.UserID, error) {
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", errors.Wrapf(ErrInvalidToken, "%v", err)
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.Wrap(ErrInvalidToken, "subject is empty")
	}
	return models.UserID(sub), nil
}

// Issue signs a token for userID. Used by tests and local tooling; in
// production tokens come from the auth service.
func Issue(secret []byte, userID models.UserID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwtlib.MapClaims{
		"sub": string(userID),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(secret)
}

func Middleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			logger.Log.Debug("request without bearer token", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: ErrMissingToken.Error()})
			return
		}

		userID, err := Verify(secret, token)
		if err != nil {
			logger.Log.Debug("cannot verify token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: ErrInvalidToken.Error()})
			return
		}

		c.Set(userKey, userID)
		c.Next()
	}
}

func UserFrom(c *gin.Context) models.UserID {
	v, _ := c.Get(userKey)
	id, _ := v.(models.UserID)
	return id
}
