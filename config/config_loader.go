// Package config fills plain structs from environment variables.
//
// Every exported field is looked up under its name in SCREAMING_SNAKE_CASE;
// fields of nested structs are prefixed with the parent field's key, so
// Bench.Redis.Addr reads REDIS_ADDR. Values come from, in order of precedence:
// the process environment, a .env file in the working directory, a value
// already present in the struct, and the `default:"..."` tag. A field with
// none of these is required and loading fails with ErrValueIsRequired.
// An empty default (`default:""`) marks a field as optional.
//
// Example usage:
//
//	type Config struct {
//		BatchSize      int            `default:"190"`
//		SampleInterval time.Duration  `default:"10ms"`
//		LogLevel       yalogger.Level `default:"info"`
//		Seed           string         `default:""`
//	}
//
//	var cfg Config
//
//	config.LoadConfigStructFromEnv(&cfg, log)
package config

import (
	"fmt"
	"net/http"
	"os"
	"reflect"

	"github.com/YaCodeDev/GoYaRSABench/valueparser"
	"github.com/YaCodeDev/GoYaRSABench/yaerrors"
	"github.com/YaCodeDev/GoYaRSABench/yalogger"
)

// Lookup resolves a key the way os.LookupEnv does.
type Lookup func(key string) (string, bool)

// LoadConfigStructFromEnv is LoadConfigStructFromEnvHandlingError that terminates
// the process through log.Fatalf on error.
func LoadConfigStructFromEnv[T any](instance *T, log yalogger.Logger) {
	safetyCheck(&log)

	if err := LoadConfigStructFromEnvHandlingError(instance, log); err != nil {
		log.Fatalf("Failed to load config struct from env: %v", err)
	}
}

// LoadConfigStructFromEnvHandlingError loads the process environment, overlaid
// on the .env file when one exists, into instance.
func LoadConfigStructFromEnvHandlingError[T any](instance *T, log yalogger.Logger) yaerrors.Error {
	safetyCheck(&log)

	dotEnv, err := loadDotEnv(DotEnvFile)
	if err != nil {
		log.Warnf("Error loading .env file: %v", err)
	}

	return LoadConfigStruct(instance, func(key string) (string, bool) {
		if value, ok := os.LookupEnv(key); ok {
			return value, true
		}

		value, ok := dotEnv[key]

		return value, ok
	}, log)
}

// LoadConfigStruct loads instance from an arbitrary key source.
func LoadConfigStruct[T any](instance *T, lookup Lookup, log yalogger.Logger) yaerrors.Error {
	safetyCheck(&log)

	value := reflect.ValueOf(instance).Elem()
	if value.Kind() != reflect.Struct {
		return yaerrors.FromErrorWithLog(
			http.StatusInternalServerError,
			ErrConfigStructMustBeStruct,
			fmt.Sprintf("config loader, got %T", instance),
			log,
		)
	}

	return loadConfigStruct(value, "", lookup, log)
}

func loadConfigStruct(
	structValue reflect.Value,
	keyPath string,
	lookup Lookup,
	log yalogger.Logger,
) yaerrors.Error {
	structType := structValue.Type()

	for i := range structValue.NumField() {
		field := structType.Field(i)
		fieldVal := structValue.Field(i)

		if !fieldVal.CanSet() {
			log.Warnf("Field %s cannot be set", field.Name)

			continue
		}

		envKey := toScreamingSnakeCase(field.Name)
		if keyPath != "" {
			envKey = keyPath + "_" + envKey
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadConfigStruct(fieldVal, envKey, lookup, log); err != nil {
				return err.Wrap("failed to load struct field " + field.Name)
			}

			continue
		}

		raw, found := lookup(envKey)
		if !found {
			defaultValue, hasDefault := field.Tag.Lookup(DefaultTagName)

			switch {
			case !fieldVal.IsZero():
				continue
			case hasDefault:
				raw = defaultValue
			default:
				return yaerrors.FromErrorWithLog(
					http.StatusBadRequest,
					ErrValueIsRequired,
					"config loader: environment variable "+envKey,
					log,
				)
			}
		}

		if err := valueparser.ParseInto(raw, fieldVal); err != nil {
			return err.WrapWithLog(fmt.Sprintf("config loader: field %s from %s", field.Name, envKey), log)
		}
	}

	return nil
}
