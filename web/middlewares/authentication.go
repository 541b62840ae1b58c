package middlewares

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"puntocheck.com/puntocheck/web/common"
)

// DeviceClaims identifies an enrolled kiosk or mobile device.
type DeviceClaims struct {
	DeviceID string `json:"deviceId"`
	jwt.RegisteredClaims
}

func Secret() []byte {
	return []byte(os.Getenv("PUNTOCHECK_JWT_SECRET"))
}

// CreateDeviceToken issues an HS256 token for a device enrollment.
func CreateDeviceToken(deviceID string, ttl time.Duration) (string, error) {
	claims := DeviceClaims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "puntocheck",
			Subject:   deviceID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(Secret())
}

func parseJwt(tokenStr string, jwtSecret []byte) (*jwt.Token, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &DeviceClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return jwtSecret, nil
	})
	return token, err
}

// Authentication checks for a valid Bearer token or session cookie.
func Authentication(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			cookie, err := c.Cookie("puntocheck.SessionCookie")
			if err != nil {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			tokenStr = parts[1]
		}

		token, err := parseJwt(tokenStr, jwtSecret)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		if claims, ok := token.Claims.(*DeviceClaims); ok {
			c.Set("deviceId", claims.DeviceID)
		}

		c.Next()
	}
}
