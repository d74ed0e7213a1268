package filterexpr

import (
	"fmt"
	"reflect"
	"strings"
)

// bindOrder parses "key [asc|desc]" against the whitelist and sets the
// OrderKey/OrderDesc fields on the params struct.
func bindOrder(params any, raw string, schema OrderSchema) error {
	key := schema.Default
	desc := schema.DefaultDesc

	raw = strings.TrimSpace(raw)
	if raw != "" {
		parts := strings.Fields(raw)
		if len(parts) > 2 {
			return fmt.Errorf("invalid order_by %q", raw)
		}
		key = parts[0]
		allowed := key == schema.Default
		for _, k := range schema.Keys {
			if k == key {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("field %q cannot be used for ordering", key)
		}
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
				desc = false
			case "desc":
				desc = true
			default:
				return fmt.Errorf("invalid direction %q", parts[1])
			}
		} else {
			desc = false
		}
	}

	dest := reflect.ValueOf(params).Elem()
	if err := setField(dest, "OrderKey", reflect.ValueOf(key)); err != nil {
		return err
	}
	return setField(dest, "OrderDesc", reflect.ValueOf(desc))
}

func setField(dest reflect.Value, name string, value reflect.Value) error {
	field := dest.FieldByName(name)
	if !field.IsValid() || !field.CanSet() {
		return fmt.Errorf("params struct %s has no settable field %q", dest.Type(), name)
	}
	if !value.Type().ConvertibleTo(field.Type()) {
		return fmt.Errorf("field %q must be %s-compatible", name, field.Type())
	}
	field.Set(value.Convert(field.Type()))
	return nil
}
