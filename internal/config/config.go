package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Extension ExtensionConfig `yaml:"extension"`
	Rendering RenderingConfig `yaml:"rendering"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type LoggingConfig struct {
	Level string `yaml:"level" default:"info"`

	// console or json
	Format string `yaml:"format" default:"console"`
}

type ServerConfig struct {
	Host string `yaml:"host" default:"0.0.0.0"`
	Port string `yaml:"port" default:"12600"`

	// Base URL handed to the extension service for callbacks.
	PublicURL string `yaml:"public_url" default:"http://localhost:12600"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" default:"sqlite"`
	DSN    string `yaml:"dsn" default:"./editorial.db"`
}

type StorageConfig struct {
	Backend     string `yaml:"backend" default:"fs"`
	Path        string `yaml:"path" default:"./files"`
	Bucket      string `yaml:"bucket" default:""`
	Endpoint    string `yaml:"endpoint" default:""`
	Compression string `yaml:"compression" default:"zstd"`
}

type ExtensionConfig struct {
	Timeout   time.Duration `yaml:"timeout" default:"10s"`
	UserAgent string        `yaml:"user_agent" default:"editorial"`
}

type RenderingConfig struct {
	Renderer    string `yaml:"renderer" default:"mmark"`
	SyntaxTheme string `yaml:"syntax_theme" default:"gruvbox"`
}

type AuthConfig struct {
	Type   string `yaml:"type" default:"ed25519"`
	Header string `yaml:"header" default:"X-Signature"`

	// User ID to PEM encoded Ed25519 public key.
	Users map[string]string `yaml:"users"`
}

var AppConfig *Config

func LoadConfig(path string) error {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
		AppConfig = config
		return nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return err
	}

	AppConfig = config
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Storage.Backend {
	case StorageFS:
	case StorageS3:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage backend %q requires a bucket", c.Storage.Backend)
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}

	switch c.Auth.Type {
	case AuthEd25519, AuthClerk:
	default:
		return fmt.Errorf("unsupported auth type %q", c.Auth.Type)
	}

	switch c.Rendering.Renderer {
	case RendererMmark, RendererClassic:
	default:
		return fmt.Errorf("unsupported renderer %q", c.Rendering.Renderer)
	}

	if c.Extension.Timeout <= 0 {
		return fmt.Errorf("extension timeout must be positive, got %s", c.Extension.Timeout)
	}

	return nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		if field.Type() == durationType {
			if val, err := time.ParseDuration(defaultValue); err == nil {
				field.SetInt(int64(val))
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int, reflect.Int64:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
