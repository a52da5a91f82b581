// Package testutil provides common test fixtures: temporary manifests,
// fake ERDDAP tool scripts, and event collection helpers.
package testutil

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/erddap-tools/erdgen/internal/event"
)

// WriteFile writes content to a file under dir and returns its path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// WriteManifest writes manifest YAML to a temp file and returns its path.
func WriteManifest(t *testing.T, yaml string) string {
	t.Helper()
	return WriteFile(t, t.TempDir(), "datasets.yaml", yaml)
}

// FakeToolsDir creates a tools directory containing a fake generator script
// with the given body (a shell fragment run with the job's arguments).
func FakeToolsDir(t *testing.T, scriptName, body string) string {
	t.Helper()
	dir := t.TempDir()
	script := filepath.Join(dir, scriptName)
	if err := os.WriteFile(script, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("failed to write fake tool: %v", err)
	}
	return dir
}

// EventCollector records every event published on a bus, safe for handlers
// called from multiple goroutines.
type EventCollector struct {
	mu     sync.Mutex
	events []event.Event
}

// Collect subscribes a new collector to every event on the bus.
func Collect(bus *event.Bus) *EventCollector {
	c := &EventCollector{}
	bus.SubscribeAll(func(e event.Event) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.events = append(c.events, e)
	})
	return c
}

// Events returns a snapshot of the collected events in publish order.
func (c *EventCollector) Events() []event.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]event.Event(nil), c.events...)
}

// Types returns the event type of every collected event in publish order.
func (c *EventCollector) Types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	types := make([]string, len(c.events))
	for i, e := range c.events {
		types[i] = e.EventType()
	}
	return types
}
