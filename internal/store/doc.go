// Package store defines the persistence interfaces for the application:
// the objection catalog, session snapshots, and trainee accounts. Concrete
// implementations live in internal/platform/postgres.
package store
