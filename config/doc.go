// Package config loads the application configuration from config.yml and
// validates it with struct tags. The loaded configuration is held in the
// package-level Config variable.
package config
