// Package timezone manages the appliance time zone: listing valid IANA
// zone names and applying a new zone, which restarts the services that
// read TZ from their environment.
package timezone

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"guardian/internal/apperr"
	"guardian/internal/envfile"
)

// tzServices are the containers that must be recreated when TZ changes.
var tzServices = []string{"cloudflared", "pihole"}

// Submitter schedules a restart batch and returns a task id. Satisfied by
// tasks.Orchestrator.
type Submitter interface {
	Submit(services []string) string
}

// Manager validates and applies time zone changes.
type Manager struct {
	store        *envfile.Store
	orchestrator Submitter
	zoneinfoDir  string

	once  sync.Once
	zones []string
	valid map[string]bool
}

// NewManager creates a timezone manager reading zone names from zoneinfoDir.
func NewManager(store *envfile.Store, orchestrator Submitter, zoneinfoDir string) *Manager {
	return &Manager{store: store, orchestrator: orchestrator, zoneinfoDir: zoneinfoDir}
}

// List returns all valid zone names, sorted. The zoneinfo directory is
// walked once and cached; the set only changes with a tzdata upgrade.
func (m *Manager) List() []string {
	m.load()
	return m.zones
}

// IsValid reports whether name is a known zone.
func (m *Manager) IsValid(name string) bool {
	m.load()
	return m.valid[name]
}

// Update validates the zone, persists it under TZ, and queues a restart of
// the TZ-dependent services. Returns the restart task id.
func (m *Manager) Update(zone string) (string, error) {
	if !m.IsValid(zone) {
		log.Printf("timezone: invalid timezone attempted: %s", zone)
		return "", apperr.Validation("Invalid timezone: %s. Must be a valid timezone from the list.", zone)
	}

	log.Printf("🌍 Updating timezone to %s", zone)
	if err := m.store.Upsert(envfile.KeyTimezone, zone); err != nil {
		return "", err
	}

	return m.orchestrator.Submit(tzServices), nil
}

// load walks the zoneinfo directory, keeping entries that LoadLocation
// accepts. Area/Location files only; legacy top-level aliases like UTC are
// kept when loadable.
func (m *Manager) load() {
	m.once.Do(func() {
		m.valid = make(map[string]bool)

		root := os.DirFS(m.zoneinfoDir)
		fs.WalkDir(root, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || path == "." {
				return nil
			}
			// Metadata files shipped alongside the database (zone.tab,
			// leapseconds, posixrules) are lowercase or dotted; real zone
			// names start with an uppercase area component.
			base := filepath.Base(path)
			if base == "" || base[0] < 'A' || base[0] > 'Z' || strings.Contains(base, ".") {
				return nil
			}
			if _, err := time.LoadLocation(path); err == nil {
				m.valid[path] = true
				m.zones = append(m.zones, path)
			}
			return nil
		})
		sort.Strings(m.zones)

		if len(m.zones) == 0 {
			log.Printf("timezone: no zones found under %s", m.zoneinfoDir)
		}
	})
}
