// Package validator adapts go-playground/validator to Echo's Validator
// interface so handlers can call c.Validate on bound request bodies.
package validator

import (
	"github.com/go-playground/validator/v10"
)

// RequestValidator wraps a validator instance with struct tag rules.
type RequestValidator struct {
	validate *validator.Validate
}

func New() *RequestValidator {
	return &RequestValidator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (v *RequestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
