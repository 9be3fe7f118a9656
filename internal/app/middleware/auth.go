package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Claims расширяет jwt.RegisteredClaims, добавляя CallerID -
// идентификатор вызывающей стороны.
type Claims struct {
	jwt.RegisteredClaims
	CallerID string
}

// CallerKey - ключ gin.Context и имя cookie, в которых хранится идентификатор вызывающего.
const CallerKey = "callerID"

// AuthMiddleware возвращает Gin-middleware, который:
//  1. проверяет JWT в cookie с именем CallerKey;
//  2. при отсутствии или невалидном токене выпускает новый и устанавливает его в cookie;
//  3. сохраняет CallerID в контексте, откуда его берёт CallLogger.
func AuthMiddleware(secretKey string, logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(CallerKey)
		if err != nil {
			logger.Debug("JWT cookie not found, generating new one")
			issueNewToken(c, secretKey, logger)
			return
		}

		claims, err := parseJWT(cookie, secretKey)
		if err != nil {
			logger.Debugw("Invalid JWT, issuing new one", "error", err)
			issueNewToken(c, secretKey, logger)
			return
		}

		c.Set(CallerKey, claims.CallerID)
	}
}

func parseJWT(tokenString, secretKey string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.CallerID == "" {
		return nil, fmt.Errorf("token carries no caller")
	}
	return claims, nil
}

// issueNewToken генерирует JWT для нового CallerID и устанавливает его в cookie.
func issueNewToken(c *gin.Context, secretKey string, logger *zap.SugaredLogger) {
	callerID := uuid.New().String()

	tokenString, err := generateJWT(callerID, secretKey)
	if err != nil {
		logger.Errorw("Failed to generate JWT", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     CallerKey,
		Value:    tokenString,
		HttpOnly: true,
	})

	c.Set(CallerKey, callerID)
}

func generateJWT(callerID, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		CallerID: callerID,
	})

	return token.SignedString([]byte(secret))
}
