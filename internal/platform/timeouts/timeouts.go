// Package timeouts defines shared timeout constants used across LifeOS
// processes so the durations stay discoverable in one place.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// ChildStop is the grace period the launcher gives a child process after an
// interrupt before killing it.
const ChildStop = time.Second

// WebsocketWrite caps a single event-stream frame write.
const WebsocketWrite = 2 * time.Second

// StoreOpen caps acquiring the store file lock on startup.
const StoreOpen = time.Second
