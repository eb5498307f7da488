package config

import (
	"errors"
	"reflect"
	"strings"

	"catalog-bootstrapper/core/database"
	"catalog-bootstrapper/core/logger"
	"catalog-bootstrapper/core/server"
	"catalog-bootstrapper/core/storage"
	"catalog-bootstrapper/feature/bootstrap"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP progress server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the spec and report store.
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the run journal.
	Database database.Config `mapstructure:"database"`
	// API holds the remote endpoints and credentials.
	API bootstrap.APIConfig `mapstructure:"api"`
	// Run holds the reconciliation settings.
	Run bootstrap.Config `mapstructure:"run"`
}

// ErrInvalidRun is returned when the run section holds an unknown mode.
var ErrInvalidRun = errors.New("invalid run configuration")

// LoadConfig loads configuration from environment variables, an optional .env file and
// an optional config.yaml in path. Environment variables win.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	// Map environment variables to nested keys (e.g. API_MANAGEMENT_URL -> api.management_url)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if !config.Run.IsValid() {
		return nil, ErrInvalidRun
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
