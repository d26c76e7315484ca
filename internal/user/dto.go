package user

import (
	errors "github.com/haddadrachelle2-png/testdoc/internal"
	"github.com/haddadrachelle2-png/testdoc/internal/core/common/validation"
)

const minPasswordLength = 8

// RegisterDTO is the request body for creating an account.
type RegisterDTO struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	GroupID      int64  `json:"group_id"`
	IsGroupAdmin bool   `json:"is_group_admin"`
}

func (d RegisterDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required().MaxLength(100)
	v.Field("password", d.Password).Required().Custom(func(val interface{}) *errors.AppError {
		if s, ok := val.(string); ok && s != "" && len(s) < minPasswordLength {
			return errors.NewValidationFieldError("password",
				"password must be at least 8 characters", errors.ErrCodeValidationFailed)
		}
		return nil
	})
	v.Field("group_id", d.GroupID).Required()
	return v.Validate()
}
