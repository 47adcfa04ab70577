package schedule

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Registry holds the schedule tiers available for selection
type Registry struct {
	schedules map[string]*Schedule
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		schedules: make(map[string]*Schedule),
	}
}

// Builtin returns a registry loaded with the four built-in tiers.
func Builtin() *Registry {
	r := NewRegistry()
	if err := r.LoadBuiltin(); err != nil {
		panic(fmt.Sprintf("built-in schedules are invalid: %v", err))
	}
	return r
}

// LoadBuiltin loads the embedded schedules
func (r *Registry) LoadBuiltin() error {
	return r.LoadFromFS(builtinFS, "builtin")
}

// LoadFromFile loads a schedule from a YAML file
func (r *Registry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read schedule file: %w", err)
	}
	return r.add(path, data)
}

// LoadFromDir loads all schedules from a directory. Schedules with the name of
// an already loaded one replace it.
func (r *Registry) LoadFromDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read schedules directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		p := filepath.Join(dir, entry.Name())
		if err := r.LoadFromFile(p); err != nil {
			return fmt.Errorf("failed to load schedule from %s: %w", p, err)
		}
	}

	return nil
}

// LoadFromFS loads schedules from a filesystem such as an embed.FS
func (r *Registry) LoadFromFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to read embedded schedules: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isYAML(entry.Name()) {
			continue
		}

		p := path.Join(dir, entry.Name())
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read embedded file %s: %w", p, err)
		}
		if err := r.add(p, data); err != nil {
			return err
		}
	}

	return nil
}

func (r *Registry) add(source string, data []byte) error {
	var s Schedule
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to parse schedule YAML from %s: %w", source, err)
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid schedule in %s: %w", source, err)
	}

	for name, other := range r.schedules {
		if name != s.Name && other.MaxHours == s.MaxHours {
			return fmt.Errorf("schedule %q in %s claims max_hours %g already used by %q", s.Name, source, s.MaxHours, name)
		}
	}

	r.schedules[s.Name] = &s
	return nil
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// Get retrieves a schedule by name
func (r *Registry) Get(name string) (*Schedule, error) {
	s, ok := r.schedules[name]
	if !ok {
		return nil, fmt.Errorf("schedule '%s' not found", name)
	}
	return s, nil
}

// List returns the schedules ordered by tier, shortest first and the
// unbounded tier last.
func (r *Registry) List() []*Schedule {
	out := make([]*Schedule, 0, len(r.schedules))
	for _, s := range r.schedules {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Unbounded() != b.Unbounded() {
			return b.Unbounded()
		}
		return a.MaxHours < b.MaxHours
	})
	return out
}

// Select picks the tier for a range of the given length in hours. Bounds are
// inclusive: a range of exactly MaxHours uses that tier.
func (r *Registry) Select(hours float64) (*Schedule, error) {
	tiers := r.List()
	if len(tiers) == 0 {
		return nil, fmt.Errorf("no schedules loaded")
	}

	for _, s := range tiers {
		if s.Covers(hours) {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no schedule covers a %.2fh range", hours)
}
