// Package domain defines the core business entities of the sales training
// simulator: trainee accounts, client personas, the objection catalog, and
// the per-session conversation state the simulation engine operates on.
// Entities validate themselves and carry no persistence or transport
// concerns.
package domain
