// File: internal/router/router.go
package router

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"userhub/internal/cache"
	"userhub/internal/database"
	"userhub/internal/handler"
	"userhub/internal/handler/users"
	"userhub/internal/middleware"
	"userhub/internal/realtime"
	"userhub/internal/service"
)

// Deps 路由所需的依賴
type Deps struct {
	DB        database.DB
	Cache     cache.Cache
	Users     users.UserService
	Hub       *realtime.Hub
	JWTSecret string
	Logger    service.Logger
}

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, d Deps) {
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	// 路由皆以斜線結尾，swagger 靜態檔除外
	e.Pre(echomw.AddTrailingSlashWithConfig(echomw.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/swagger/")
		},
	}))
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	api := e.Group("/api/v1")

	// 健康檢查
	api.GET("/ping/", handler.PingHandler(d.DB, d.Cache))

	api.GET("/get-users/", users.ListUsersHandler(d.Users))
	api.POST("/create-user/", users.CreateUserHandler(d.Users))

	// 即時事件，需登入
	e.GET("/ws/users/", realtime.ServeWS(d.Hub, d.Logger), middleware.RequireAuth(d.JWTSecret))

	e.GET("/swagger/*", echoSwagger.WrapHandler)
}
