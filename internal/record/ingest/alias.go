package ingest

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"

	"github.com/shandysiswandi/gorecord/internal/pkg/pkgfile"
	"gopkg.in/yaml.v3"
)

type aliasDoc struct {
	Aliases map[string]string `yaml:"aliases"`
}

// AliasTable maps spreadsheet headers to record field names. Keys are stored
// normalized; the table is persisted as YAML on every Learn.
type AliasTable struct {
	mu      sync.RWMutex
	path    string
	aliases map[string]string
}

// NewAliasTable loads path. A missing file starts an empty table; path may be
// empty for a table that is never persisted.
func NewAliasTable(path string) (*AliasTable, error) {
	t := &AliasTable{path: path, aliases: make(map[string]string)}
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return t, nil
		}
		return nil, fmt.Errorf("read alias table: %w", err)
	}

	var doc aliasDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode alias table: %w", err)
	}
	for header, field := range doc.Aliases {
		if key := NormalizeHeader(header); key != "" && field != "" {
			t.aliases[key] = field
		}
	}

	return t, nil
}

// Resolve returns the field for header. Unknown headers map to themselves with
// whitespace cleaned up.
func (t *AliasTable) Resolve(header string) string {
	t.mu.RLock()
	field, ok := t.aliases[NormalizeHeader(header)]
	t.mu.RUnlock()
	if ok {
		return field
	}
	return cleanHeader(header)
}

// List returns a copy of the table keyed by normalized header.
func (t *AliasTable) List() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return maps.Clone(t.aliases)
}

// Learn records header -> field and persists the table. The in-memory table is
// left unchanged when persisting fails.
func (t *AliasTable) Learn(header, field string) error {
	key := NormalizeHeader(header)
	if key == "" || field == "" {
		return errors.New("header and field are required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	next := maps.Clone(t.aliases)
	next[key] = field

	if t.path != "" {
		data, err := yaml.Marshal(aliasDoc{Aliases: next})
		if err != nil {
			return fmt.Errorf("encode alias table: %w", err)
		}
		if err := pkgfile.WriteAtomic(t.path, data, 0o644); err != nil {
			return fmt.Errorf("write alias table: %w", err)
		}
	}

	t.aliases = next
	return nil
}
