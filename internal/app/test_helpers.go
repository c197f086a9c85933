package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/vk/recipemap/internal/catalogue"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance reading from cat for system testing.
func SetupAppTest(t *testing.T, cfg *Config, cat catalogue.Catalogue) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	cfg.LogLevel = "debug"
	testApp := NewAppWithCatalogue(logBuffer, cfg, cat)

	t.Cleanup(func() {
		if os.Getenv("RECIPEMAP_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
