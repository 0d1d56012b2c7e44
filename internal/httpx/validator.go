package httpx

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// ISBNs arrive in many partial forms (short dashed prefixes included), so the
// rule only checks digits and length after stripping separators. Strict
// checksum validation would reject identifiers that exist upstream.
var isbnRe = regexp.MustCompile(`^[0-9]{1,12}[0-9X]$`)

func init() {
	validate = validator.New()

	validate.RegisterValidation("isbn", validateISBN)

	// Report json field names in error details, not Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateISBN(fl validator.FieldLevel) bool {
	isbn := strings.ReplaceAll(fl.Field().String(), "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	return isbnRe.MatchString(isbn)
}

// ValidateStruct runs the shared validator over a request struct and converts
// failures into response details.
func ValidateStruct(s interface{}) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var details []ErrorDetail
	for _, fieldErr := range err.(validator.ValidationErrors) {
		field := fieldErr.Field()
		tag := fieldErr.Tag()
		param := fieldErr.Param()

		var message string
		switch tag {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, param)
		case "isbn":
			message = fmt.Sprintf("%s must contain only digits, dashes, and spaces", field)
		case "uuid":
			message = fmt.Sprintf("%s must be a valid UUID", field)
		case "gt", "gte", "lt", "lte":
			message = fmt.Sprintf("%s is out of range (%s %s)", field, tag, param)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}

		details = append(details, ErrorDetail{
			Field:   field,
			Message: message,
		})
	}

	return details
}
