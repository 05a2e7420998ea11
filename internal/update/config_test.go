package update

import (
	"testing"
	"time"
)

func TestRuntimeConfigDefaults(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	if cfg.NotificationLogSize != 20 || cfg.SavedAckDuration != 2*time.Second {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
}

func TestRuntimeConfigWithDefaultsKeepsOverrides(t *testing.T) {
	cfg := RuntimeConfig{NotificationLogSize: 5}.withDefaults()
	if cfg.NotificationLogSize != 5 {
		t.Fatalf("override lost: %+v", cfg)
	}
	if cfg.AITimeout != DefaultRuntimeConfig().AITimeout {
		t.Fatalf("missing default ai timeout: %+v", cfg)
	}
}
