// Package postgres provides PostgreSQL implementations of the store
// interfaces. Queries run through sqlx on top of the pgx stdlib driver, and the
// schema is managed by goose migrations embedded in this package.
package postgres
