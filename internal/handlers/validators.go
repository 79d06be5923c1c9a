package handlers

import (
	"regexp"
	"sync"

	"github.com/SscSPs/access_exchange/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// idempotencyKeyPattern is printable ASCII without spaces, at most 255 characters.
var idempotencyKeyPattern = regexp.MustCompile(`^[\x21-\x7E]{1,255}$`)

var registerValidatorsOnce sync.Once

// registerValidators adds the custom binding tags used by the DTOs to gin's validator engine.
func registerValidators() {
	registerValidatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("gin binding engine is not go-playground/validator")
		}
		if err := v.RegisterValidation("idempotency_key", validateIdempotencyKey); err != nil {
			panic(err)
		}
		if err := v.RegisterValidation("order_side", validateOrderSide); err != nil {
			panic(err)
		}
	})
}

func validateIdempotencyKey(fl validator.FieldLevel) bool {
	return idempotencyKeyPattern.MatchString(fl.Field().String())
}

func validateOrderSide(fl validator.FieldLevel) bool {
	return domain.OrderSide(fl.Field().String()).IsValid()
}
