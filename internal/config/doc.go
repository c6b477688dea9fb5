// Package config loads simulator settings from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. It exposes strongly typed settings for
// the block capacity, data source selection, and the serve-mode HTTP server.
package config
