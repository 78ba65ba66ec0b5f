package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateAndDecode decodes the JSON body into payload and runs the struct
// validation tags. On failure it writes a 400 with per-field messages and
// returns false; the handler should then return without writing anything.
func ValidateAndDecode(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeValidationError(w, map[string]string{"body": "Invalid request body"})
		return false
	}

	if err := validate.Struct(payload); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		fields := make(map[string]string, len(validationErrors))
		for _, fe := range validationErrors {
			fields[strings.ToLower(fe.Field())] = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
		}
		writeValidationError(w, fields)
		return false
	}

	return true
}

func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Validation failed",
		"errors":  fields,
	})
}
