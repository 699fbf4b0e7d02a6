// Package task provides the background task infrastructure: a persisted
// task lifecycle (pending, processing, completed, failed), a bounded
// in-memory queue, a worker-pool runner with crash recovery and stuck
// task detection, and the card-generation task itself.
package task
