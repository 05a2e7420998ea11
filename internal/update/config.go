package update

import "time"

type RuntimeConfig struct {
	NotificationLogSize int
	AITimeout           time.Duration
	SavedAckDuration    time.Duration
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		NotificationLogSize: 20,
		AITimeout:           45 * time.Second,
		SavedAckDuration:    2 * time.Second,
	}
}

func (c RuntimeConfig) withDefaults() RuntimeConfig {
	d := DefaultRuntimeConfig()
	if c.NotificationLogSize <= 0 {
		c.NotificationLogSize = d.NotificationLogSize
	}
	if c.AITimeout <= 0 {
		c.AITimeout = d.AITimeout
	}
	if c.SavedAckDuration <= 0 {
		c.SavedAckDuration = d.SavedAckDuration
	}
	return c
}
