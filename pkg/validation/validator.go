package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Domain aliases. Values with spaces are quoted for oneof.
const (
	severityValues        = "oneof=Low Medium High Critical"
	complaintStatusValues = "oneof='Open' 'Under Investigation' 'Resolved' 'Closed'"
	changeStatusValues    = "oneof='Draft' 'Pending Review' 'Approved' 'Rejected' 'Implemented' 'Closed'"
	decisionValues        = "oneof=approve reject"
	kindValues            = "oneof=complaint change_control risk audit"
)

var aliasMessages = map[string]string{
	"severity":        "must be one of Low, Medium, High, Critical",
	"complaintstatus": "must be one of Open, Under Investigation, Resolved, Closed",
	"changestatus":    "must be one of Draft, Pending Review, Approved, Rejected, Implemented, Closed",
	"decision":        "must be approve or reject",
	"kind":            "must be one of complaint, change_control, risk, audit",
}

// Init configures the global validator used by Gin's binding.
// - Uses json/form/uri tag names in errors.
// - Registers alias tags for the QMS vocabularies.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Register(v)
	}
}

// Register applies the tag name func and aliases to v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("uri"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterAlias("pwd", "min=8")
	v.RegisterAlias("severity", severityValues)
	v.RegisterAlias("complaintstatus", complaintStatusValues)
	v.RegisterAlias("changestatus", changeStatusValues)
	v.RegisterAlias("decision", decisionValues)
	v.RegisterAlias("kind", kindValues)
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	if msg, ok := aliasMessages[fe.Tag()]; ok {
		return msg
	}
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "url":
		return "must be a valid URL"
	case "pwd":
		return "must be at least 8 characters"
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "min":
		if isNumberKind(fe.Kind()) {
			return "must be at least " + param
		}
		return "must be at least " + param + " characters"
	case "max":
		if isNumberKind(fe.Kind()) {
			return "must be at most " + param
		}
		return "must be at most " + param + " characters"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "len":
		return "must be exactly " + param + " characters"
	}
	return "is invalid"
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
