package service

import (
	"errors"
	"reflect"
	"strings"

	"userhub/internal/apperror"

	"github.com/go-playground/validator/v10"
)

// CreateUserInput 建立使用者的輸入；欄位順序即缺漏欄位的回報順序
type CreateUserInput struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	IsAdmin  bool   `json:"is_admin"`
}

var validate = NewValidator()

// NewValidator 建立以 json / query tag 命名欄位的 validator
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// ValidateCreateUser 檢查必要欄位，之後再檢查 email 格式
func ValidateCreateUser(in CreateUserInput) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperror.Unexpected("validate", err)
		}
		missing := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				missing = append(missing, fe.Field())
			}
		}
		return apperror.MissingFields(missing...)
	}
	if err := validate.Var(in.Email, "email"); err != nil {
		return apperror.Invalid("invalid email format")
	}
	return nil
}
