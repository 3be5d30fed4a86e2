package pipeline

import "time"

// SetBackoff shortens the retry delay in tests.
func (p *Publisher) SetBackoff(d time.Duration) { p.backoff = d }
