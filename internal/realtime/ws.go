package realtime

import (
	"net/http"
	"time"

	"userhub/internal/api"
	"userhub/internal/middleware"
	"userhub/internal/service"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 以 token 驗證身分，不限制來源
	CheckOrigin: func(r *http.Request) bool { return true },
}

// feedAll 管理員以 ?feed=all 訂閱所有使用者的事件
const feedAll = "all"

// ServeWS 升級為 WebSocket 並訂閱登入者自己的 topic (管理員可改訂 users.all)，須掛在 RequireAuth 之後
func ServeWS(h *Hub, logger service.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get(middleware.ContextUserKey).(*service.CustomClaims)
		if !ok || claims.UserID == 0 {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "missing token"})
		}

		topic := TopicForUser(claims.UserID)
		switch c.QueryParam("feed") {
		case "":
		case feedAll:
			if !claims.IsAdmin {
				return c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "admin privileges required"})
			}
			topic = TopicAllUsers
		default:
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid feed"})
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			// Upgrade 已寫回錯誤回應
			logger.Warnf("realtime: upgrade: %v", err)
			return nil
		}

		client, err := h.Accept(conn, topic)
		if err != nil {
			msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "rejected")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			_ = conn.Close()
			return nil
		}
		client.Serve()
		return nil
	}
}
