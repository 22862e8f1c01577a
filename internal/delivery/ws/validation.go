package ws

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// errMalformedPayload marks a payload that is not valid JSON for its event
var errMalformedPayload = errors.New("malformed payload")

// newValidator reports field errors under their JSON names
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodePayload unmarshals raw into dst and validates it. Field problems are
// returned keyed by their JSON path, e.g. "origin.latitude": "lte".
func decodePayload(v *validator.Validate, raw json.RawMessage, dst any) (map[string]string, error) {
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, errMalformedPayload
		}
	}

	err := v.Struct(dst)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe.Namespace())] = fe.Tag()
	}
	return fields, nil
}

// fieldPath drops the struct name from a validator namespace
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
