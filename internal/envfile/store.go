// Package envfile reads and mutates the appliance's flat KEY=value
// configuration file. It is the schema and masking authority for every
// other package; nothing else touches the file directly.
package envfile

import (
	"log"
	"os"
	"strings"
	"sync"

	"guardian/internal/apperr"
)

// SensitiveMask replaces sensitive values before they leave this package.
const SensitiveMask = "••••••••"

// Entry is a masked, display-ready view of one known key found in the file.
type Entry struct {
	Key          string `json:"key"`
	Value        string `json:"value"`
	CategoryName string `json:"categoryName"`
	Description  string `json:"description"`
	Sensitive    bool   `json:"sensitive"`
	Tooltip      string `json:"tooltip,omitempty"`
}

// Snapshot is the result of a full config read: the entries present in the
// file plus the categories that have at least one entry, in first-seen order.
type Snapshot struct {
	Categories []CategoryInfo `json:"categories"`
	Entries    []Entry        `json:"entries"`
}

// Store reads and upserts the env file. All mutation goes through a single
// lock so two concurrent upserts cannot lose each other's write.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a store for the env file at path. The file must already
// exist; operations fail with a NotFound error if it does not.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Read parses the file and returns one masked entry per known key found,
// in file order. Malformed lines, comments, and unknown keys are skipped.
func (s *Store) Read() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.readLines()
	if err != nil {
		return Snapshot{}, err
	}

	var entries []Entry
	var categories []CategoryInfo
	seenCategory := make(map[Category]bool)

	for _, line := range lines {
		name, value, ok := parseLine(line)
		if !ok {
			continue
		}
		key, known := lookupKey(name)
		if !known {
			log.Printf("envfile: skipping unknown key %s", name)
			continue
		}

		display := value
		if key.Sensitive() {
			display = SensitiveMask
		}
		entries = append(entries, Entry{
			Key:          string(key),
			Value:        display,
			CategoryName: key.Category().Info().Name,
			Description:  key.DisplayName(),
			Sensitive:    key.Sensitive(),
			Tooltip:      key.Tooltip(),
		})

		if !seenCategory[key.Category()] {
			seenCategory[key.Category()] = true
			categories = append(categories, key.Category().Info())
		}
	}

	return Snapshot{Categories: categories, Entries: entries}, nil
}

// GetRaw returns the unmasked value for key, with surrounding quotes
// stripped. The second return is false when the key is absent. Only trusted
// internal callers use this; it never feeds a wire response.
func (s *Store) GetRaw(key Key) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.readLines()
	if err != nil {
		return "", false, err
	}

	for _, line := range lines {
		name, value, ok := parseLine(line)
		if ok && name == string(key) {
			return value, true, nil
		}
	}
	return "", false, nil
}

// Upsert replaces the value of key in place if a line for it exists,
// otherwise appends a new line. Sensitive values are always written wrapped
// in single quotes so embedded '=' and '$' survive shell sourcing.
func (s *Store) Upsert(key Key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.readLines()
	if err != nil {
		return err
	}

	escaped := value
	if key.Sensitive() {
		escaped = "'" + value + "'"
	}
	newLine := string(key) + "=" + escaped

	updated := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), string(key)+"=") {
			lines[i] = newLine
			updated = true
			break
		}
	}
	if !updated {
		lines = append(lines, newLine)
	}

	if err := os.WriteFile(s.path, []byte(strings.Join(lines, "\n")), 0o600); err != nil {
		return apperr.Internal(err, "write config file")
	}
	log.Printf("envfile: upserted %s", key)
	return nil
}

// readLines loads the file, treating a missing file as a fatal precondition.
// Callers must hold s.mu.
func (s *Store) readLines() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperr.NotFound("configuration file not found: %s", s.path)
		}
		return nil, apperr.Internal(err, "read config file")
	}
	return strings.Split(string(data), "\n"), nil
}

// parseLine splits a KEY=value line, returning ok=false for blank lines,
// comments, and lines without '='. The value has surrounding quotes stripped.
func parseLine(line string) (name, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return "", "", false
	}
	name, raw, found := strings.Cut(trimmed, "=")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(name), unquote(strings.TrimSpace(raw)), true
}

// unquote removes one layer of matching single or double quotes. Both forms
// appear in provisioned files; bcrypt hashes are single-quoted to protect
// their '$' runs.
func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '\'' && v[len(v)-1] == '\'') || (v[0] == '"' && v[len(v)-1] == '"') {
			return v[1 : len(v)-1]
		}
	}
	return v
}
