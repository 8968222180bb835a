package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
)

// envBinding ties one settable config field to the variable named in its
// env tag.
type envBinding struct {
	name  string
	field reflect.Value
}

// applyEnv overrides every config field whose env variable is set.
// Variables that are present but empty are treated as set.
func applyEnv(cfg *Config) error {
	for _, b := range envBindings(reflect.ValueOf(cfg).Elem()) {
		raw, ok := os.LookupEnv(b.name)
		if !ok {
			continue
		}
		if err := assignEnv(b.field, raw); err != nil {
			return fmt.Errorf("%s: %w", b.name, err)
		}
	}
	return nil
}

// envBindings collects tagged fields, descending into the config sections.
func envBindings(v reflect.Value) []envBinding {
	var out []envBinding
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		if field.Kind() == reflect.Struct {
			out = append(out, envBindings(field)...)
			continue
		}
		if name := t.Field(i).Tag.Get("env"); name != "" && field.CanSet() {
			out = append(out, envBinding{name: name, field: field})
		}
	}
	return out
}

func assignEnv(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", raw)
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("expected a number, got %q", raw)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", raw)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported config field kind %s", field.Kind())
	}
	return nil
}
