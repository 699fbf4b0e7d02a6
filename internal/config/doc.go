// Package config defines the application's configuration structure and
// loads it from files and environment variables at startup.
package config
