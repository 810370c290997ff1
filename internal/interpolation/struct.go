package interpolation

import (
	"errors"
	"fmt"
	"reflect"
)

// Tag marks string fields whose value may reference variables:
//
//	Origin string `toml:"origin" interpolate:"env"`
const Tag = "interpolate"

// Struct expands tagged string and []string fields of the struct v points to,
// in place. Nested structs are walked whether tagged or not.
func (e *Expander) Struct(v any) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Pointer || val.IsNil() || val.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("expected non-nil pointer to struct, got %T", v)
	}
	return e.walk(val.Elem(), "")
}

func (e *Expander) walk(val reflect.Value, prefix string) error {
	typ := val.Type()
	var errs []error

	for i := range val.NumField() {
		field := val.Field(i)
		sf := typ.Field(i)
		if !field.CanSet() {
			continue
		}
		name := prefix + sf.Name

		if field.Kind() == reflect.Struct {
			if err := e.walk(field, name+"."); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if sf.Tag.Get(Tag) != "env" {
			continue
		}

		switch {
		case field.Kind() == reflect.String:
			if err := e.expandValue(field); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
			}
		case field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String:
			for j := range field.Len() {
				if err := e.expandValue(field.Index(j)); err != nil {
					errs = append(errs, fmt.Errorf("%s[%d]: %w", name, j, err))
				}
			}
		}
	}
	return errors.Join(errs...)
}

func (e *Expander) expandValue(v reflect.Value) error {
	if v.String() == "" {
		return nil
	}
	out, err := e.Expand(v.String())
	if err != nil {
		return err
	}
	v.SetString(out)
	return nil
}
