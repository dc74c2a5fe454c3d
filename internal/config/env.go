package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// LoadEnv overlays environment variables onto the config. Each section
// struct declares its variables through `env` tags; unset variables
// leave the YAML/default value in place.
func LoadEnv(config *AppConfig) error {
	log.Debug().Msg("Loading environment variables")

	sections := []interface{}{
		&config.App,
		&config.Database,
		&config.Server,
		&config.JWT,
		&config.PasswordReset,
		&config.Logging,
		&config.CORS,
		&config.PasswordHash,
		&config.Email,
		&config.Uploads,
		&config.Maintenance,
	}

	for _, section := range sections {
		if err := overlayEnv(section); err != nil {
			return err
		}
	}
	return nil
}

// overlayEnv walks a section struct and applies any env-tagged field
// whose variable is set.
func overlayEnv(s interface{}) error {
	val := reflect.ValueOf(s).Elem()
	typ := val.Type()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		target := val.Field(i)

		if !target.CanSet() {
			continue
		}
		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}
		raw, ok := os.LookupEnv(envName)
		if !ok {
			continue
		}
		if err := setFromEnv(target, field.Type, envName, raw); err != nil {
			return err
		}
	}
	return nil
}

// setFromEnv parses raw according to the field's kind and assigns it.
func setFromEnv(target reflect.Value, fieldType reflect.Type, envName, raw string) error {
	switch target.Kind() {
	case reflect.String:
		target.SetString(raw)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// time.Duration is an int64 underneath but wants "15m" syntax.
		if fieldType == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return fmt.Errorf("invalid duration for %s: %w", envName, err)
			}
			target.Set(reflect.ValueOf(d))
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %w", envName, err)
		}
		target.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer for %s: %w", envName, err)
		}
		target.SetUint(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %w", envName, err)
		}
		target.SetBool(b)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid float for %s: %w", envName, err)
		}
		target.SetFloat(f)

	case reflect.Slice:
		// Comma-separated lists; only string slices are used in config.
		if target.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(raw, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			target.Set(reflect.ValueOf(parts))
		}

	default:
		// Unsupported kinds keep their configured value.
	}
	return nil
}
