package auth

import (
	"strings"

	"github.com/frahmantamala/leave-request/internal"
	"github.com/frahmantamala/leave-request/internal/core/common/validation"
)

// Validate checks required fields and returns a ValidationError on failure.
func (d LoginDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("email", strings.TrimSpace(d.Email)).Required().Email()
	v.Field("password", d.Password).Required()
	return v.Validate()
}
