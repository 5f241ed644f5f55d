package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/kasamthapa/krisi/internal/domain/catalog"
	"github.com/kasamthapa/krisi/internal/domain/escrow"
	"github.com/kasamthapa/krisi/internal/domain/trade"
	"github.com/kasamthapa/krisi/internal/interfaces/http/dto"
)

// SetupValidator configures gin's validator with JSON field names and the
// marketplace enum tags. It must run before the router serves requests.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	validators := map[string]validator.Func{
		"product_unit": func(fl validator.FieldLevel) bool {
			return catalog.ProductUnit(fl.Field().String()).IsValid()
		},
		"product_category": func(fl validator.FieldLevel) bool {
			return catalog.ProductCategory(fl.Field().String()).IsValid()
		},
		"order_status": func(fl validator.FieldLevel) bool {
			_, err := trade.ParseOrderStatus(fl.Field().String())
			return err == nil
		},
		"payment_method": func(fl validator.FieldLevel) bool {
			_, err := escrow.ParsePaymentMethod(fl.Field().String())
			return err == nil
		},
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// FormatValidationErrors formats validation errors into a standard response
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	}

	message := "Request validation failed"
	if len(details) == 0 {
		message = "Malformed request: " + err.Error()
	}
	return dto.NewValidationErrorResponse(message, requestID, details)
}

// HandleValidationError returns a validation error response
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Type().Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Type().Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "product_unit":
		return "Must be one of: WEIGHT COUNT DOZEN"
	case "product_category":
		return "Must be one of: VEGETABLES FRUITS GRAINS DAIRY OTHER"
	case "order_status":
		return "Must be one of: PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"
	case "payment_method":
		return "Must be one of: BANK_TRANSFER CASH DIGITAL_WALLET"
	default:
		return "Invalid value"
	}
}
