package driver

import (
	"bytes"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Airsequel/AirScript/pkg/prelude"
	"github.com/Airsequel/AirScript/pkg/runtime"
)

const frontmatterFence = "---"

// Frontmatter is the optional YAML header of a script, fenced by lines that
// contain only "---".
type Frontmatter struct {
	Description string
	Tags        []string
	// Files maps binding names to globs relative to the script directory.
	Files map[string]string
	// Constants maps binding names to scalar, list or map values.
	Constants map[string]any
	Budget    BudgetSpec
}

// BudgetSpec is a partial budget. Empty fields keep the host default.
type BudgetSpec struct {
	Cycles int64
	Memory string
	Time   string
}

type frontmatterDisk struct {
	Description string            `yaml:"description"`
	Tags        []string          `yaml:"tags"`
	Files       map[string]string `yaml:"files"`
	Constants   map[string]any    `yaml:"constants"`
	Budget      *budgetDisk       `yaml:"budget"`
}

type budgetDisk struct {
	Cycles int64  `yaml:"cycles"`
	Memory string `yaml:"memory"`
	Time   string `yaml:"time"`
}

// SplitFrontmatter separates the header from the script body. The header
// lines are blanked in the returned body so positions in diagnostics keep
// their line numbers. A script without a header yields an empty Frontmatter.
func SplitFrontmatter(source string) (*Frontmatter, string, error) {
	lines := strings.SplitAfter(source, "\n")
	if len(lines) == 0 || fenceLine(lines[0]) != frontmatterFence {
		return &Frontmatter{}, source, nil
	}
	closing := -1
	for i := 1; i < len(lines); i++ {
		if fenceLine(lines[i]) == frontmatterFence {
			closing = i
			break
		}
	}
	if closing < 0 {
		return nil, "", errors.New("frontmatter: missing closing ---")
	}

	header := strings.Join(lines[1:closing], "")
	fm, err := parseFrontmatter([]byte(header))
	if err != nil {
		return nil, "", err
	}
	body := strings.Repeat("\n", closing+1) + strings.Join(lines[closing+1:], "")
	return fm, body, nil
}

func fenceLine(line string) string {
	return strings.TrimRight(line, " \t\r\n")
}

func parseFrontmatter(header []byte) (*Frontmatter, error) {
	var raw frontmatterDisk
	if len(bytes.TrimSpace(header)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(header))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil {
			return nil, errors.Wrap(err, "frontmatter")
		}
	}
	fm := &Frontmatter{
		Description: strings.TrimSpace(raw.Description),
		Tags:        raw.Tags,
		Files:       raw.Files,
		Constants:   raw.Constants,
	}
	if raw.Budget != nil {
		fm.Budget = BudgetSpec{Cycles: raw.Budget.Cycles, Memory: raw.Budget.Memory, Time: raw.Budget.Time}
	}
	for name := range fm.Files {
		if err := checkBindingName(name); err != nil {
			return nil, errors.Wrap(err, "frontmatter files")
		}
	}
	for name := range fm.Constants {
		if err := checkBindingName(name); err != nil {
			return nil, errors.Wrap(err, "frontmatter constants")
		}
		if _, dup := fm.Files[name]; dup {
			return nil, errors.Errorf("frontmatter: %s is declared as both a file and a constant", name)
		}
	}
	return fm, nil
}

// Apply returns base with the non-empty fields replaced.
func (spec BudgetSpec) Apply(base runtime.Budget) (runtime.Budget, error) {
	if spec.Cycles < 0 {
		return base, errors.Errorf("budget cycles must be positive, got %d", spec.Cycles)
	}
	if spec.Cycles > 0 {
		base.MaxCycles = spec.Cycles
	}
	if spec.Memory != "" {
		limit, err := ParseMemory(spec.Memory)
		if err != nil {
			return base, err
		}
		base.MaxMemoryBytes = limit
	}
	if spec.Time != "" {
		d, err := time.ParseDuration(spec.Time)
		if err != nil {
			return base, errors.Wrapf(err, "budget time %q", spec.Time)
		}
		if d <= 0 {
			return base, errors.Errorf("budget time must be positive, got %s", spec.Time)
		}
		base.MaxWallTime = d
	}
	return base, nil
}

// ParseMemory reads a human size such as "64MB" or "512KiB".
func ParseMemory(s string) (int64, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, errors.Wrapf(err, "budget memory %q", s)
	}
	if n == 0 || n > 1<<62 {
		return 0, errors.Errorf("budget memory %q is out of range", s)
	}
	return int64(n), nil
}

func checkBindingName(name string) error {
	if name == InputBinding {
		return errors.Errorf("%s is reserved for stdin", name)
	}
	if entry, ok := prelude.Global(name); ok {
		return errors.Errorf("%s is taken by the prelude global for %s", name, entry.Qualified())
	}
	if name == "" || name[0] < 'a' || name[0] > 'z' {
		return errors.Errorf("binding name %q must start with a lowercase letter", name)
	}
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.Errorf("binding name %q contains %q", name, r)
		}
	}
	return nil
}
