// Package api contains the HTTP handlers, request/response models and
// error mapping for the JSON API. Handlers decode and validate input,
// delegate to the service layer, and translate service errors into
// stable status codes and safe messages.
package api
