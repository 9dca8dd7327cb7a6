package service

import "time"

const (
	// Sync retry policy
	DefaultMaxSyncAttempts = 3
	SyncRetryBackoff       = 1500 * time.Millisecond // multiplied by the attempt number
	MaxBreakerWaits        = 3                       // open-breaker waits per run, on top of the attempts

	// Auto sync covers this many days ending today unless configured
	DefaultAutoSyncDays = 3

	// Sync run triggers
	TriggerManual = "manual"
	TriggerAuto   = "auto"
)

