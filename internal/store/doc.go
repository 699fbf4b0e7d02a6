// Package store defines interfaces for data persistence operations:
// users, decks, cards, the review ledger and per-user settings. The
// interfaces keep business logic independent of the database; the
// postgres package provides the production implementations.
package store
