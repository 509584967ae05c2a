package api

// ListUsersQuery get-users 的查詢參數
type ListUsersQuery struct {
	// 指定時只回傳單一使用者
	ID            string `query:"id" validate:"omitempty,number" example:"1"`
	ExcludeAdmins bool   `query:"exclude_admins" example:"false"`
}
