package middleware

import (
	"net/http"
	"strings"

	"userhub/internal/service"

	"github.com/labstack/echo/v4"
)

const ContextUserKey = "user"

// tokenQueryParam 瀏覽器 WebSocket 無法自訂標頭時改由查詢參數帶 token
const tokenQueryParam = "token"

func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if tok := c.QueryParam(tokenQueryParam); tok != "" {
			return tok, nil
		}
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
	}
	return parts[1], nil
}

func extractClaims(c echo.Context, secret string) (*service.CustomClaims, error) {
	tokenString, err := extractToken(c)
	if err != nil {
		return nil, err
	}
	claims, err := service.VerifyAccessToken(secret, tokenString)
	if err != nil {
		// 不回傳解析細節
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	return claims, nil
}

// RequireAuth 驗證 access token 並將 claims 存入 context
func RequireAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := extractClaims(c, secret)
			if err != nil {
				return err
			}
			c.Set(ContextUserKey, claims)
			return next(c)
		}
	}
}
