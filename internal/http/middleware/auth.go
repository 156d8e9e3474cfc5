package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/fabsketch-backend/internal/platform/ctxutil"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
)

// AuthMiddleware verifies HS256 bearer tokens issued by the account service.
// The token subject is the owning user's id.
type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
	issuer string
}

func NewAuthMiddleware(log *logger.Logger, secret, issuer string) (*AuthMiddleware, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("JWT_SECRET_KEY is required")
	}
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{
		log:    middlewareLogger,
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
	}, nil
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}
		userID, err := am.verify(tokenString)
		if err != nil {
			am.log.Debug("Token rejected", "error", err)
			if errors.Is(err, errBadSubject) {
				abortAuth(c, http.StatusForbidden, "forbidden", "forbidden")
				return
			}
			abortAuth(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token")
			return
		}

		ctx := c.Request.Context()
		if rd := ctxutil.GetRequestData(ctx); rd != nil {
			rd.UserID = userID
		} else {
			ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: userID})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

var errBadSubject = errors.New("token subject is not a user id")

func (am *AuthMiddleware) verify(tokenString string) (uuid.UUID, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if am.issuer != "" {
		opts = append(opts, jwt.WithIssuer(am.issuer))
	}
	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return am.secret, nil
	}, opts...); err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, errBadSubject
	}
	return userID, nil
}

func abortAuth(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}

// Only the Authorization header is read.
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
