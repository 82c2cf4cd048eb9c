// file: internals/features/sessions/engine/config.go
package engine

import "time"

// Config hoists the engine constants out of the call sites so deployments can
// tune them without a rebuild of every service.
type Config struct {
	// Credential lockout
	LockoutThreshold int           // failed attempts before a lock
	LockoutDuration  time.Duration // how long a lock holds
	CodeMaxRetries   int           // collision retries when drawing a code

	// Session capacity defaults (applied when a session is created without
	// explicit thresholds)
	DefaultMinParticipants int
	DefaultMaxParticipants int

	// Base URL embedded in convocation mails
	PortalBaseURL string
}

func DefaultConfig() Config {
	return Config{
		LockoutThreshold:       3,
		LockoutDuration:        30 * time.Minute,
		CodeMaxRetries:         10,
		DefaultMinParticipants: 4,
		DefaultMaxParticipants: 10,
		PortalBaseURL:          "https://portal.formationhub.fr",
	}
}
