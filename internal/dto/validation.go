package dto

import (
	"errors"
	"fmt"
	"sync"

	"github.com/SscSPs/books_backend/internal/utils/accounting"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ErrValidatorInit is returned when custom validator registration fails.
var ErrValidatorInit = errors.New("validator initialization failed")

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators adds the amount rules used by the request DTOs to vld.
//
//	decimal_amount      decimal string, sign allowed
//	nonnegative_amount  decimal string >= 0
//
// Both reject more decimal places than accounting.AmountScale.
func RegisterValidators(vld *validator.Validate) error {
	if err := vld.RegisterValidation("decimal_amount", func(fl validator.FieldLevel) bool {
		str := fl.Field().String()
		if str == "" {
			return true // Let required tag handle empty strings
		}
		d, parseErr := decimal.NewFromString(str)
		return parseErr == nil && accounting.FitsScale(d)
	}); err != nil {
		return fmt.Errorf("%w: failed to register 'decimal_amount': %w", ErrValidatorInit, err)
	}

	if err := vld.RegisterValidation("nonnegative_amount", func(fl validator.FieldLevel) bool {
		str := fl.Field().String()
		if str == "" {
			return true
		}
		d, parseErr := decimal.NewFromString(str)
		if parseErr != nil {
			return false
		}
		return !d.IsNegative() && accounting.FitsScale(d)
	}); err != nil {
		return fmt.Errorf("%w: failed to register 'nonnegative_amount': %w", ErrValidatorInit, err)
	}

	return nil
}

// RegisterGinValidators installs the custom rules on gin's binding engine once per process.
func RegisterGinValidators() error {
	registerOnce.Do(func() {
		vld, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("%w: unexpected gin validator engine", ErrValidatorInit)
			return
		}
		registerErr = RegisterValidators(vld)
	})
	return registerErr
}
