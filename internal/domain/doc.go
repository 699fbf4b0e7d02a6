// Package domain contains the core business entities, value objects, and
// domain logic of the application: users, decks, cards, the per-card
// memory state, review records, and per-user scheduling settings. It is
// independent of any specific infrastructure or delivery mechanism.
package domain
