package environment

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// ParseEnvTags fills a struct from environment variables using struct tags.
//
//	type Options struct {
//	    Port    string        `env:"PORT" default:":8080"`
//	    Origins []string      `env:"CORS_ORIGINS" separator:","`
//	    Key     string        `env:"JWT_SIGNING_KEY" required:"true"`
//	    Timeout time.Duration `env:"TIMEOUT" default:"5s"`
//	}
//
// Keys are namespaced with prefix (PREFIX_PORT). Nested structs without an env
// tag are walked with the same prefix. An empty variable counts as unset.
func ParseEnvTags(prefix string, cfg any) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return errors.New("cfg must be a pointer to a struct")
	}
	v = v.Elem()
	t := v.Type()

	for i := range v.NumField() {
		field := v.Field(i)
		sf := t.Field(i)
		if !field.CanSet() {
			continue
		}

		envKey := sf.Tag.Get("env")
		if envKey == "" {
			if field.Kind() == reflect.Struct && field.Type() != timeType {
				if err := ParseEnvTags(prefix, field.Addr().Interface()); err != nil {
					return fmt.Errorf("%s: %w", sf.Name, err)
				}
			}
			continue
		}

		key := GetNamespaceEnvKey(prefix, envKey)
		value := os.Getenv(key)
		if value == "" {
			if sf.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", key)
			}
			value = sf.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(field, value, sf.Tag.Get("separator")); err != nil {
			return fmt.Errorf("%s (%s): %w", sf.Name, key, err)
		}
	}

	return nil
}

func setField(field reflect.Value, value, separator string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("cannot parse duration: %w", err)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("cannot parse int: %w", err)
		}
		field.SetInt(n)

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("cannot parse float: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cannot parse bool: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type())
		}
		if separator == "" {
			separator = ","
		}
		parts := strings.Split(value, separator)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		field.Set(reflect.ValueOf(parts))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}
