package omitnilpointers

import (
	"reflect"
)

// OmitNilPointers drops nil-pointer entries from a field map and flattens
// non-nil pointers to their pointed-to value, so partial updates only touch
// the fields the caller actually provided.
func OmitNilPointers(fields map[string]any) map[string]any {
	omitted := make(map[string]any)
	for key, value := range fields {
		if value == nil {
			continue
		}

		v := reflect.ValueOf(value)
		if v.Kind() == reflect.Ptr {
			if v.IsNil() {
				continue
			}
			omitted[key] = v.Elem().Interface()
		} else {
			omitted[key] = value
		}
	}

	return omitted
}
