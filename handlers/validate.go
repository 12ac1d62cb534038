package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/kevinaaaquil/docshare/backend/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

const passwordSpecials = "@$!%*?&"

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		if err := validate.RegisterValidation("password", strongPassword); err != nil {
			panic(fmt.Sprintf("register password rule: %v", err))
		}
	})
	return validate
}

// strongPassword requires a lower case letter, an upper case letter, a digit
// and one of @$!%*?&, and no other characters.
func strongPassword(fl validator.FieldLevel) bool {
	var lower, upper, digit, special bool
	for _, c := range fl.Field().String() {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, c):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

// validateStruct runs the struct tags and reports failures as ErrValidation.
func validateStruct(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", models.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s allows at most %s entries", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "password":
		return field + " must contain upper and lower case letters, a digit and one of " + passwordSpecials
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// decodeJSON decodes the body into dst and validates it.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json", models.ErrValidation)
	}
	return validateStruct(dst)
}
