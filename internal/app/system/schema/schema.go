// Package schema validates entity payloads before they reach storage.
//
// Validation rules live in `validate` struct tags on the domain models.
// Errors are reported per field, keyed by the field's JSON name, so the
// admin UI can place each message next to its input.
package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-playground/validator/v10"
)

// Custom validation tags.
const (
	tagNotBlank = "notblank"
	tagHTTPURL  = "httpurl"
	tagImageRef = "imageref"
	tagBlobRef  = "blobref"
)

// TempPrefix is the blob path prefix of temporary uploads. A value carrying
// this prefix refers to an upload waiting to be promoted on save.
const TempPrefix = "tmp/"

// FieldErrors maps a field's JSON name to a human-readable message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Checker is implemented by types with rules that span several fields.
// full is true for inserts and false for partial updates.
type Checker interface {
	Check(full bool) map[string]string
}

// Validator wraps a configured go-playground validator.
type Validator struct {
	v *validator.Validate
}

// New returns a Validator with the custom tags registered.
func New() *Validator {
	v := validator.New()

	// Report JSON names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation(tagNotBlank, func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && strings.TrimSpace(s) != ""
	})
	_ = v.RegisterValidation(tagHTTPURL, func(fl validator.FieldLevel) bool {
		return urlutil.IsValidAbsHTTPURL(fl.Field().String())
	})
	_ = v.RegisterValidation(tagImageRef, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return urlutil.IsValidAbsHTTPURL(s) || IsImageDataURI(s) || IsTempPath(s)
	})
	_ = v.RegisterValidation(tagBlobRef, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return urlutil.IsValidAbsHTTPURL(s) || IsTempPath(s)
	})

	return &Validator{v: v}
}

// Struct validates every field of v. It returns nil or a FieldErrors.
func (s *Validator) Struct(v any) error {
	fe := FieldErrors{}
	if err := s.v.Struct(v); err != nil {
		if err := collect(err, fe); err != nil {
			return err
		}
	}
	check(v, true, fe)
	if len(fe) > 0 {
		return fe
	}
	return nil
}

// Partial validates only the fields of v that hold a non-zero value, which
// is how merge updates are expressed. Omitted fields are not checked.
func (s *Validator) Partial(v any) error {
	fe := FieldErrors{}
	if fields := Supplied(v); len(fields) > 0 {
		if err := s.v.StructPartial(v, fields...); err != nil {
			if err := collect(err, fe); err != nil {
				return err
			}
		}
	}
	check(v, false, fe)
	if len(fe) > 0 {
		return fe
	}
	return nil
}

// Supplied returns the Go names of the validated fields of v (a struct or a
// pointer to one) that are set to a non-zero value.
func Supplied(v any) []string {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}
	rt := rv.Type()
	var out []string
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() || f.Tag.Get("validate") == "" {
			continue
		}
		if !rv.Field(i).IsZero() {
			out = append(out, f.Name)
		}
	}
	return out
}

// IsTempPath reports whether s names a temporary upload.
func IsTempPath(s string) bool {
	return strings.HasPrefix(s, TempPrefix) && len(s) > len(TempPrefix) && !strings.Contains(s, "..")
}

// IsImageDataURI reports whether s is an inline base64 image.
func IsImageDataURI(s string) bool {
	return strings.HasPrefix(s, "data:image/") && strings.Contains(s, ";base64,")
}

func collect(err error, fe FieldErrors) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	for _, e := range verrs {
		if _, seen := fe[e.Field()]; !seen {
			fe[e.Field()] = message(e)
		}
	}
	return nil
}

func check(v any, full bool, fe FieldErrors) {
	c, ok := v.(Checker)
	if !ok {
		return
	}
	for k, msg := range c.Check(full) {
		if _, seen := fe[k]; !seen {
			fe[k] = msg
		}
	}
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required", tagNotBlank:
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", e.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "gte":
		if e.Param() == "0" {
			return "must be zero or greater"
		}
		return "must be at least " + e.Param()
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(e.Param(), " ", ", ")
	case tagHTTPURL:
		return "must be a valid http(s) URL"
	case tagImageRef:
		return "must be an image URL or an uploaded image"
	case tagBlobRef:
		return "must be a URL or an uploaded file"
	}
	return "is invalid"
}
