package faq

import "time"

// Config holds runtime knobs for the FAQ service.
type Config struct {
	// CacheTTL bounds how long listings stay cached. Zero disables caching.
	CacheTTL time.Duration
}
