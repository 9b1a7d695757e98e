// Package config loads service configuration with Viper.
//
// Values come from a config.yml found in the standard locations, then from
// environment variables (optionally seeded from a .env file). Nested keys
// map to upper-case, underscore-separated variables, so server.port can be
// overridden with SERVER_PORT.
//
//	var cfg MyConfig
//	err := config.LoadConfig("carmarket-api", &cfg)
package config
