// internal/pkg/config/validators.go
package config

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// BasicValidator performs basic configuration validation
type BasicValidator struct{}

// Validate performs basic validation
func (v *BasicValidator) Validate(cfg *Config) error {
	if err := validateRequiredFields(cfg); err != nil {
		return err
	}

	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: api base url %q must be absolute", ErrInvalidConfig, cfg.API.BaseURL)
	}

	if cfg.Dashboard.PageSize <= 0 {
		return fmt.Errorf("%w: page size must be positive", ErrInvalidConfig)
	}
	if cfg.Dashboard.BulkConcurrency <= 0 {
		return fmt.Errorf("%w: bulk delete concurrency must be positive", ErrInvalidConfig)
	}
	switch cfg.Dashboard.BulkPolicy {
	case "per_item", "all_or_nothing":
	default:
		return fmt.Errorf("%w: unknown bulk delete policy %q", ErrInvalidConfig, cfg.Dashboard.BulkPolicy)
	}

	if cfg.API.RateLimit <= 0 {
		return fmt.Errorf("%w: api rate limit must be positive", ErrInvalidConfig)
	}
	if cfg.API.RetryMax < 0 {
		return fmt.Errorf("%w: api retry max cannot be negative", ErrInvalidConfig)
	}

	if cfg.Redis.Enabled && cfg.Redis.PoolSize <= 0 {
		return fmt.Errorf("%w: redis pool_size must be positive", ErrInvalidConfig)
	}

	switch cfg.Storage.Provider {
	case "local", "s3":
	default:
		return fmt.Errorf("%w: unknown storage provider %q", ErrInvalidConfig, cfg.Storage.Provider)
	}

	switch cfg.Secrets.Provider {
	case "env":
	case "aws":
		if cfg.Secrets.SecretName == "" {
			return fmt.Errorf("%w: AWS secret name", ErrMissingRequiredConfig)
		}
	default:
		return fmt.Errorf("%w: unknown secrets provider %q", ErrInvalidConfig, cfg.Secrets.Provider)
	}

	return nil
}

// ProductionValidator performs strict validation for production environments
type ProductionValidator struct{}

// Validate performs production-specific validation
func (v *ProductionValidator) Validate(cfg *Config) error {
	if !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return fmt.Errorf("api base url must use https in production")
	}

	if strings.Contains(cfg.API.Password, "MISSING_") {
		return fmt.Errorf("%w: api password", ErrMissingRequiredConfig)
	}

	if cfg.Storage.Provider == "s3" && cfg.Storage.Bucket == "" {
		return fmt.Errorf("%w: export bucket", ErrMissingRequiredConfig)
	}

	if cfg.Storage.UsePathStyle && cfg.Storage.Endpoint == "" {
		return fmt.Errorf("path-style S3 addressing is only for custom endpoints")
	}

	return nil
}

// validateRequiredFields uses reflection to check required struct tags
func validateRequiredFields(cfg interface{}) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	return validateStruct(v, "")
}

func validateStruct(v reflect.Value, prefix string) error {
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)
		fieldName := fieldType.Name

		if prefix != "" {
			fieldName = prefix + "." + fieldName
		}

		if required := fieldType.Tag.Get("required"); required == "true" {
			if isZeroValue(field) {
				return fmt.Errorf("%w: %s", ErrMissingRequiredConfig, fieldName)
			}
		}

		// Recursively check nested structs
		if field.Kind() == reflect.Struct {
			if err := validateStruct(field, fieldName); err != nil {
				return err
			}
		}
	}

	return nil
}

func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == "" || strings.HasPrefix(v.String(), "MISSING_")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
