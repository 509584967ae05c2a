package api

// ErrorResponse 全域錯誤回應
// swagger:model api.ErrorResponse
type ErrorResponse struct {
	Error string `json:"error" example:"user not found"`
	// 重複鍵時指出衝突欄位
	ErrMessage string `json:"err_message,omitempty" example:"username already exists"`
}

// PingResponse 健康檢查回應
// swagger:model api.PingResponse
type PingResponse struct {
	Message string `json:"message" example:"pong"`
}
