// Package config provides configuration management for the catalog bootstrapper.
//
// It utilizes Viper for loading configuration from environment variables, an optional
// .env file (godotenv) and an optional config.yaml.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP progress server settings (port, API key, concurrent runs)
//   - Database: run journal connection (mysql or sqlite)
//   - Storage: S3/MinIO credentials and bucket for spec documents and reports
//   - Log: Logging level and format
//   - API: management and catalog endpoints, access token, target instance
//   - Run: worker budget, multilingual mode, item topic and publish modes, reference cache
//
// Defaults come from the `default` struct tags. Environment variables map onto nested
// keys by replacing dots with underscores (API_ACCESS_TOKEN_ID -> api.access_token_id).
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Instance)
package config
