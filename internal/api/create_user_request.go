package api

// CreateUserRequest 建立使用者的 JSON 請求
// 必填欄位由 service 層檢查，以便一次回報所有缺漏欄位
// swagger:model api.CreateUserRequest
type CreateUserRequest struct {
	// required: true
	Username string `json:"username" example:"alice"`
	// required: true
	Email string `json:"email" example:"alice@example.com"`
	// required: true
	Password string `json:"password" example:"Secret123!"`
	IsAdmin  bool   `json:"is_admin" example:"false"`
}
