package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// CreateSQLMigration scaffolds the same <version>_<name>.sql in every
// dialect set under base and returns the created paths. Nothing is written
// when any target already exists.
func CreateSQLMigration(base, name string, now time.Time) ([]string, error) {
	if base == "" {
		return nil, fmt.Errorf("dir is required")
	}
	safe := sanitizeName(name)
	if safe == "" {
		return nil, fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	filename := fmt.Sprintf("%s_%s.sql", now.UTC().Format("20060102150405"), safe)
	paths := make([]string, 0, len(Dialects))
	for _, dialect := range Dialects {
		path := filepath.Join(dialect.Dir(base), filename)
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("migration already exists: %s", path)
		}
		paths = append(paths, path)
	}

	for i, dialect := range Dialects {
		if err := os.MkdirAll(dialect.Dir(base), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %q: %w", dialect.Dir(base), err)
		}
		body := fmt.Sprintf("-- +goose Up\n-- %s (%s)\n\n-- +goose Down\n-- rollback %s\n", safe, dialect, safe)
		if err := os.WriteFile(paths[i], []byte(body), 0o644); err != nil {
			return nil, fmt.Errorf("write migration %q: %w", paths[i], err)
		}
	}
	return paths, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}
