// Package service provides the application services that sit between the
// HTTP API and the stores: deck and card management, review session
// planning, review submission, per-user settings, and bulk card import.
//
// Services own the ownership checks (every deck and card access is
// verified against the requesting user), compose store calls into
// transactions, and translate store errors into the sentinel families the
// API layer maps to HTTP status codes.
package service
