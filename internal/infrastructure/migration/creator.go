package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const migrationTemplate = `-- {{.Direction}}: {{.Name}}
-- Created: {{.Timestamp}}

`

var (
	migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)
	unsafeNameChars      = regexp.MustCompile(`[^a-z0-9]+`)
)

// MigrationFile is a created up/down migration pair
type MigrationFile struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration writes the next sequential up/down migration pair into dir
func CreateMigration(dir, name string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	next, err := nextVersion(dir)
	if err != nil {
		return nil, err
	}
	return writePair(dir, next, slug)
}

// CreateDriverMigrations writes the next pair into the subdirectory of dir
// for every entry of Drivers, all under the same version.
func CreateDriverMigrations(dir, name string) ([]*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}

	next := uint(1)
	for _, driver := range Drivers {
		v, err := nextVersion(filepath.Join(dir, driver))
		if err != nil {
			return nil, err
		}
		if v > next {
			next = v
		}
	}

	files := make([]*MigrationFile, 0, len(Drivers))
	for _, driver := range Drivers {
		mf, err := writePair(filepath.Join(dir, driver), next, slug)
		if err != nil {
			for _, written := range files {
				_ = os.Remove(written.UpPath)
				_ = os.Remove(written.DownPath)
			}
			return nil, err
		}
		files = append(files, mf)
	}
	return files, nil
}

func nextVersion(dir string) (uint, error) {
	versions, err := ListVersions(dir)
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 1, nil
	}
	return versions[len(versions)-1] + 1, nil
}

func writePair(dir string, version uint, slug string) (*MigrationFile, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	base := fmt.Sprintf("%06d_%s", version, slug)
	mf := &MigrationFile{
		Version:  version,
		Name:     slug,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}

	if err := writeMigrationFile(mf.UpPath, "Up", slug); err != nil {
		return nil, err
	}
	if err := writeMigrationFile(mf.DownPath, "Down", slug); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeMigrationFile(path, direction, name string) error {
	tmpl := template.Must(template.New("migration").Parse(migrationTemplate))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	return tmpl.Execute(f, map[string]string{
		"Direction": direction,
		"Name":      name,
		"Timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// sanitizeName lowercases name and collapses every run of other characters to "_"
func sanitizeName(name string) string {
	slug := unsafeNameChars.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(slug, "_")
}

// ListVersions returns the sorted versions of the up migrations in dir
func ListVersions(dir string) ([]uint, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var versions []uint
	for _, entry := range entries {
		match := migrationFilePattern.FindStringSubmatch(entry.Name())
		if entry.IsDir() || match == nil || match[3] != "up" {
			continue
		}
		v, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			continue
		}
		versions = append(versions, uint(v))
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })
	return versions, nil
}
