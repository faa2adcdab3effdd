package validator

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/care-portal/internal/model"
)

var registerOnce sync.Once

// Register installs the portal's custom tags on gin's binding validator and
// reports field names by their json tag. Safe to call more than once.
func Register() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
			return
		}
		err = Configure(v)
	})
	return err
}

// Configure adds the custom tags to v.
func Configure(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("slot", isSlot); err != nil {
		return err
	}
	return v.RegisterValidation("calendar_date", isCalendarDate)
}

func isSlot(fl validator.FieldLevel) bool {
	_, err := model.ParseSlot(fl.Field().String())
	return err == nil
}

func isCalendarDate(fl validator.FieldLevel) bool {
	_, err := model.ParseDate(fl.Field().String())
	return err == nil
}

// Describe turns binding failures into a single client-facing sentence.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return "invalid request body"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return strings.Join(msgs, "; ")
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "uuid":
		return field + " must be a valid id"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "calendar_date":
		return field + " must be a date in YYYY-MM-DD form"
	case "slot":
		labels := make([]string, 0, len(model.DailyTemplate()))
		for _, s := range model.DailyTemplate() {
			labels = append(labels, s.String())
		}
		return fmt.Sprintf("%s must be one of %s", field, strings.Join(labels, ", "))
	default:
		return field + " is invalid"
	}
}
