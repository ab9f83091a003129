// Package config handles configuration loading, parsing, and validation
// from environment variables (TASKBOARD_ prefix) and an optional YAML file.
// The listening port, database URL and JWT signing secret have no defaults and
// must be provided.
package config
