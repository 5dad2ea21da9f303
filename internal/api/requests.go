package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// requestValidate carries the custom rules used by the request DTOs below.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	requestValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = requestValidate.RegisterValidation("sessionstatus", validateSessionStatus)
	_ = requestValidate.RegisterValidation("rfc3339", validateRFC3339)
}

func validateSessionStatus(fl validator.FieldLevel) bool {
	_, err := domain.ParseSessionStatus(fl.Field().String())
	return err == nil
}

// validateRFC3339 accepts blank values; pair it with required where a
// timestamp must be present.
func validateRFC3339(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if raw == "" {
		return true
	}
	_, err := time.Parse(time.RFC3339, raw)
	return err == nil
}

type createSessionRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	StartAt     string  `json:"start_at" validate:"required,rfc3339"`
	EndAt       *string `json:"end_at" validate:"omitempty,rfc3339"`
	TagID       *string `json:"tag_id"`
	NewTagName  *string `json:"new_tag_name" validate:"omitempty,max=64"`
	NewTagColor *string `json:"new_tag_color"`
	BreakTime   *int    `json:"break_time" validate:"omitempty,min=0"`
	Status      string  `json:"status" validate:"omitempty,sessionstatus"`
}

func (r createSessionRequest) input() service.CreateSessionInput {
	return service.CreateSessionInput{
		Name:        r.Name,
		StartAt:     r.StartAt,
		EndAt:       r.EndAt,
		TagID:       r.TagID,
		NewTagName:  r.NewTagName,
		NewTagColor: r.NewTagColor,
		BreakTime:   r.BreakTime,
		Status:      r.Status,
	}
}

type rescheduleRequest struct {
	Name    *string `json:"name" validate:"omitempty,max=200"`
	StartAt *string `json:"start_at" validate:"omitempty,rfc3339"`
	EndAt   *string `json:"end_at" validate:"omitempty,rfc3339"`
	TagID   *string `json:"tag_id"`
}

func (r rescheduleRequest) input() service.RescheduleInput {
	return service.RescheduleInput{Name: r.Name, StartAt: r.StartAt, EndAt: r.EndAt, TagID: r.TagID}
}

// startBreakRequest leaves Type unvalidated: unknown types become CUSTOM.
type startBreakRequest struct {
	Type string `json:"type"`
}

type createTagRequest struct {
	Name  string `json:"name" validate:"required,max=64"`
	Color string `json:"color" validate:"required"`
}

// bindJSON decodes the body into req and runs the struct rules. Every
// failure is reported as a validation error. An empty body is accepted when
// allowEmpty is set.
func bindJSON(c *gin.Context, req any, allowEmpty bool) error {
	if err := c.ShouldBindJSON(req); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			return fmt.Errorf("%w: %s has the wrong type", domain.ErrValidation, typeErr.Field)
		case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return fmt.Errorf("%w: request body must be valid JSON", domain.ErrValidation)
		}
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := requestValidate.Struct(req); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fe.Field() + " is required"
	case "rfc3339":
		msg = fe.Field() + " must be an RFC3339 timestamp"
	case "sessionstatus":
		msg = fe.Field() + " must be one of SCHEDULED, IN_PROGRESS, COMPLETED"
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		msg = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		msg = fe.Field() + " is invalid"
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
}
