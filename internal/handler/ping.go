// File: internal/handler/ping.go
package handler

import (
	"net/http"
	"time"

	"userhub/internal/api"
	"userhub/internal/cache"
	"userhub/internal/database"

	"github.com/labstack/echo/v4"
)

const (
	pingKey = "userhub:ping"
	pingTTL = 10 * time.Second
)

// PingHandler 健康檢查
// @Summary     Health Check
// @Description 回傳 pong，並檢查資料庫與 Redis 連線是否正常
// @Tags        health
// @Produce     json
// @Success     200 {object} api.PingResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /ping [get]
func PingHandler(db database.DB, cch cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := db.Ping(ctx); err != nil {
			c.Logger().Errorf("ping: database: %v", err)
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "database unhealthy"})
		}
		if err := cch.Set(ctx, pingKey, "pong", pingTTL).Err(); err != nil {
			c.Logger().Errorf("ping: cache: %v", err)
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "cache unhealthy"})
		}
		return c.JSON(http.StatusOK, api.PingResponse{Message: "pong"})
	}
}
