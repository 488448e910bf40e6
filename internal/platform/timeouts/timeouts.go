// Package timeouts defines shared timeout constants used across commands.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight requests during
// graceful shutdown.
const Shutdown = 10 * time.Second

// ClientRequest caps one API call made by the command-line client.
const ClientRequest = 10 * time.Second

// HealthWait caps how long a health probe keeps retrying.
const HealthWait = 30 * time.Second
