// Package events provides a minimal in-process event seam between
// request handlers and the background task infrastructure: handlers
// emit task requests without importing the task package, and a task
// event handler turns them into persisted tasks.
package events
