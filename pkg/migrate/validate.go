package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// ValidateDir checks every dialect set under base: filenames, goose
// markers, and that all sets carry the same migrations.
func ValidateDir(base string) error {
	if base == "" {
		return fmt.Errorf("dir is required")
	}

	var reference []string
	var referenceDialect Dialect
	for _, dialect := range Dialects {
		names, err := validateSet(dialect.Dir(base))
		if err != nil {
			return fmt.Errorf("%s migrations: %w", dialect, err)
		}
		if reference == nil {
			reference, referenceDialect = names, dialect
			continue
		}
		if missing := diff(reference, names); len(missing) > 0 {
			return fmt.Errorf("%s migrations missing %s present in %s", dialect, strings.Join(missing, ", "), referenceDialect)
		}
		if extra := diff(names, reference); len(extra) > 0 {
			return fmt.Errorf("%s migrations missing %s present in %s", referenceDialect, strings.Join(extra, ", "), dialect)
		}
	}
	return nil
}

// validateSet returns the sorted migration filenames of dir.
func validateSet(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{}
	names := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := seen[m[1]]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		seen[m[1]] = name

		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", name, err)
		}
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(string(b), marker) {
				return nil, fmt.Errorf("migration %q missing %q", name, marker)
			}
		}
		names = append(names, name)
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("no migrations found in %q", dir)
	}
	sort.Strings(names)
	return names, nil
}

func diff(want, got []string) []string {
	have := make(map[string]struct{}, len(got))
	for _, n := range got {
		have[n] = struct{}{}
	}
	var out []string
	for _, n := range want {
		if _, ok := have[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}
