package renewal

// Config tunes the renewal sweep.
type Config struct {
	// Schedule is a cron expression or @every interval.
	Schedule string
	// BatchSize caps how many due subscriptions one sweep processes.
	BatchSize int
}

func (c Config) withDefaults() Config {
	if c.Schedule == "" {
		c.Schedule = "@every 1m"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 25
	}
	return c
}
