package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/aiesociety/aiesweb/internal/app/system/limits"
	"github.com/aiesociety/aiesweb/internal/app/system/schema"
)

// MaxJSONBody caps request bodies decoded by DecodeJSON.
const MaxJSONBody = limits.MaxJSONBody

// DecodeJSON decodes the request body into dst, rejecting unknown fields.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func asFieldErrors(err error, fe *schema.FieldErrors) bool {
	return stderrors.As(err, fe)
}
