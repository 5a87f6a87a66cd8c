// Package task provides a small in-memory background task runner used for
// startup work that must not block the HTTP server, such as seeding the
// default objection catalog.
package task
