package handler

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/reancirl/coffee-erp-sub000/internal/presentation/http/dto/response"
	"github.com/reancirl/coffee-erp-sub000/pkg/apperror"
)

func init() {
	// report fields by their JSON names, e.g. items[0].unit_price
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// bindJSON decodes the body into req. Malformed JSON is answered with 400,
// failed binding rules with 422 and a per-field error list. It reports
// whether the handler may continue.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs):
		response.ValidationError(c, fieldErrors(verrs))
	case errors.As(err, &typeErr):
		response.ValidationError(c, []apperror.FieldError{{
			Field:   typeErr.Field,
			Message: "must be a " + typeErr.Type.String(),
		}})
	case errors.Is(err, io.EOF):
		response.BadRequest(c, "Request body is required")
	default:
		response.BadRequest(c, "Invalid request body: "+err.Error())
	}
	return false
}

func fieldErrors(verrs validator.ValidationErrors) []apperror.FieldError {
	out := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		// drop the root struct name
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		out = append(out, apperror.FieldError{Field: field, Message: ruleMessage(fe)})
	}
	return out
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "is invalid"
}

// businessDateParam resolves the :date path segment. "today" means the
// current business date.
func businessDateParam(c *gin.Context, today func() string) string {
	date := c.Param("date")
	if date == "today" {
		return today()
	}
	return date
}
