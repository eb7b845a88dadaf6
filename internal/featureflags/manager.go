// Package featureflags evaluates runtime toggles defined in a simple
// key=value list. The main consumer is the ingestion bootstrap, which uses
// flags to enable or disable individual content sources without a deploy.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// Manager evaluates flags from a comma-separated config string.
// Example: "devto=on,guardian=off,new_feed=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a flag manager from a comma-separated config string.
// Malformed pairs are skipped.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is on, treating percentage values as off.
// Unknown flags are off.
func (m *Manager) Enabled(name string) bool {
	return m.EnabledFor(name, "")
}

// EnabledFor evaluates a flag for a given rollout key (a client or request
// identifier). Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic rollout by key hash, e.g. 25%)
func (m *Manager) EnabledFor(name, key string) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	if strings.HasSuffix(value, "%") {
		pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
		if err != nil {
			return false
		}
		if pct <= 0 {
			return false
		}
		if pct >= 100 {
			return true
		}
		if key == "" {
			return false
		}
		return rolloutBucket(name, key) < pct
	}

	return false
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + key))
	return int(h.Sum32() % 100)
}
