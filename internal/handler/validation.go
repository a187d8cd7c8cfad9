// Package handler contains the gin controllers for pages, partials and JSON endpoints.
package handler

import (
	"effisense-go/internal/model"
	"effisense-go/internal/service"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var powerRatingPattern = regexp.MustCompile(`^\d+(\.\d+)?\s?(W|kW)$`)

var registerOnce sync.Once

// RegisterValidators installs the custom tags on gin's validator and reports fields by form name.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("usagefreq", func(fl validator.FieldLevel) bool {
			return model.UsageFrequency(fl.Field().Int()).Valid()
		})
		_ = v.RegisterValidation("powerrating", func(fl validator.FieldLevel) bool {
			return powerRatingPattern.MatchString(fl.Field().String())
		})
	})
}

// bindForm binds the request into obj and converts any failure into a *service.ValidationError.
func bindForm(c *gin.Context, obj interface{}) error {
	err := c.ShouldBind(obj)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return service.NewValidationError("form", "The submitted form could not be read: "+err.Error())
	}
	verr := &service.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), fieldMessage(fe))
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s.", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s.", fe.Field(), fe.Param())
	case "email":
		return "Please enter a valid email address."
	case "datetime":
		return fmt.Sprintf("%s must use the format %s.", fe.Field(), fe.Param())
	case "numeric", "len":
		return fmt.Sprintf("%s is not a valid year.", fe.Field())
	case "usagefreq":
		return "Usage frequency must be between 1 and 5."
	case "powerrating":
		return "Power rating must look like 1500W or 1.5kW."
	case "eqfield":
		return "The passwords do not match."
	default:
		return fmt.Sprintf("%s is invalid.", fe.Field())
	}
}
