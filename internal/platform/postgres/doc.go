// Package postgres provides PostgreSQL implementations of the store
// interfaces, using database/sql over the pgx driver. Driver errors are
// translated into the store error family at this boundary; SQL details
// never leak upward.
package postgres
