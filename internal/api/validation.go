package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	errNameEmpty       = errors.New("Habit name cannot be empty")
	errNameTooLong     = errors.New("must be at most 200 characters long")
	errDescriptionLong = errors.New("must be at most 1000 characters long")
)

var customErrors = map[string]error{
	"CreateHabitRequest.Name.required":   errNameEmpty,
	"CreateHabitRequest.Name.notblank":   errNameEmpty,
	"CreateHabitRequest.Name.max":        errNameTooLong,
	"CreateHabitRequest.Description.max": errDescriptionLong,
}

// NotBlank rejects strings that are empty after trimming whitespace.
var NotBlank = func(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// NewValidator returns a validator that reports JSON field names and knows notblank.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldErrors converts validator errors into one {field: message} entry per failure.
func FieldErrors(err error) []map[string]string {
	errList := make([]map[string]string, 0)

	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		for _, e := range validationErr {
			key := e.StructNamespace() + "." + e.Tag()

			errMsg := fmt.Sprintf("%s is invalid", e.Field())
			if v, ok := customErrors[key]; ok {
				errMsg = v.Error()
			}
			errList = append(errList, map[string]string{e.Field(): errMsg})
		}
	}
	return errList
}

type validationResponse struct {
	Type   string              `json:"type"`
	Detail string              `json:"detail"`
	Errors []map[string]string `json:"errors"`
}

func writeValidationError(w http.ResponseWriter, err error) {
	fields := FieldErrors(err)
	detail := "invalid request"
	if len(fields) > 0 {
		for _, msg := range fields[0] {
			detail = msg
		}
	}
	writeJSON(w, http.StatusBadRequest, validationResponse{
		Type:   "validation_failed",
		Detail: detail,
		Errors: fields,
	})
}
