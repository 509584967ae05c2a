// File: internal/handler/users/user.go
package users

import (
	"context"
	"net/http"
	"strconv"

	"userhub/internal/api"
	"userhub/internal/apperror"
	"userhub/internal/model"
	"userhub/internal/service"

	"github.com/labstack/echo/v4"
)

// UserService handler 所需的使用者操作
type UserService interface {
	Get(ctx context.Context, id int) (*model.User, error)
	List(ctx context.Context, excludeAdmins bool) ([]model.User, error)
	Create(ctx context.Context, in service.CreateUserInput) (*model.User, error)
}

// writeError 依錯誤種類寫回狀態碼與安全訊息
func writeError(c echo.Context, err error) error {
	he := apperror.ToHTTP(err)
	return c.JSON(he.StatusCode, api.ErrorResponse{Error: he.Message, ErrMessage: he.Detail})
}

// ListUsersHandler 列出使用者或取得單一使用者
// @Summary     List users or get one by id
// @Description 帶 id 時回傳該使用者；否則依 created_at 由新到舊回傳，最多 LIST_LIMIT 筆
// @Tags        users
// @Produce     json
// @Param       id             query int  false "使用者 ID"
// @Param       exclude_admins query bool false "排除管理員"
// @Success     200 {array}  api.UserResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /get-users/ [get]
func ListUsersHandler(svc UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var q api.ListUsersQuery
		if err := c.Bind(&q); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid query parameters"})
		}
		if err := c.Validate(&q); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid user ID"})
		}

		ctx := c.Request().Context()
		if q.ID != "" {
			id, err := strconv.Atoi(q.ID)
			if err != nil || id <= 0 {
				return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid user ID"})
			}
			u, err := svc.Get(ctx, id)
			if err != nil {
				return writeError(c, err)
			}
			return c.JSON(http.StatusOK, api.NewUserResponse(*u))
		}

		list, err := svc.List(ctx, q.ExcludeAdmins)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, api.NewUserResponses(list))
	}
}

// CreateUserHandler 建立新使用者
// @Summary     Create a new user
// @Description 接收 JSON 建立帳號 (Email 會自動轉小寫)，缺漏欄位會一次列出
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       body body     api.CreateUserRequest true "使用者資料"
// @Success     201  {object} api.UserResponse
// @Failure     400  {object} api.ErrorResponse
// @Failure     500  {object} api.ErrorResponse
// @Router      /create-user/ [post]
func CreateUserHandler(svc UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.CreateUserRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body"})
		}

		u, err := svc.Create(c.Request().Context(), service.CreateUserInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
			IsAdmin:  req.IsAdmin,
		})
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, api.NewUserResponse(*u))
	}
}
