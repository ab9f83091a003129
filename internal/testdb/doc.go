// Package testdb provides a migrated PostgreSQL database for integration
// tests, either from TASKBOARD_TEST_DATABASE_URL or from a throwaway
// testcontainers instance.
package testdb
