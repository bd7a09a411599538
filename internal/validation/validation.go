// Package validation holds the validator rules shared by request bodies and configuration.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var mongoURIRegex = regexp.MustCompile(`^(mongodb(?:\+srv)?)://`)

// New returns a validator with the custom rules registered. Field names in errors come
// from the `env` tag, then the `json` tag, then the Go field name.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	mustRegister(v)
	return v
}

// RegisterWithGin adds the custom rules to gin's binding validator so `binding:"..."` tags
// can use them.
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
	}
	v.RegisterTagNameFunc(fieldName)
	mustRegister(v)
	return nil
}

func mustRegister(v *validator.Validate) {
	if err := v.RegisterValidation("mongodb_uri", isMongoURI); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("strongpassword", isStrongPassword); err != nil {
		panic(err)
	}
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"env", "json"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func isMongoURI(fl validator.FieldLevel) bool {
	return mongoURIRegex.MatchString(fl.Field().String())
}

// isStrongPassword: at least 8 characters with a lowercase letter, an uppercase letter,
// a digit and a symbol.
func isStrongPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if utf8.RuneCountInString(s) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

// Messages renders validation errors as "FIELD : message" lines. Other errors are returned
// as a single line.
func Messages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("%s : %s", fe.Field(), message(fe)))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be an email"
	case "mongodb_uri":
		return "requires a valid mongo db connection string"
	case "strongpassword":
		return "is not strong enough"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gtfield":
		return fmt.Sprintf("must be after %s", lowerFirst(fe.Param()))
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}

// lowerFirst turns a Go field name into its JSON name (StartDate -> startDate).
func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}

// AbortWithBindError answers 400 for a request body that failed to bind or validate.
func AbortWithBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": Messages(err)})
}
