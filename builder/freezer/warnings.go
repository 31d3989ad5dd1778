package freezer

import (
	"fmt"
	"sync"

	"github.com/gobwas/glob"
)

// Warning is a non-fatal condition noticed during a freeze.
type Warning struct {
	Message string
}

// Suppressor collects warnings and silences the ones matching the
// configured patterns. Matching counts as handled, so suppressed
// warnings never reach the output. Safe for concurrent use.
type Suppressor struct {
	globs []glob.Glob

	mu         sync.Mutex
	warnings   []Warning
	suppressed int
}

// NewSuppressor compiles the suppression patterns. Patterns use
// fnmatch semantics, so "Nothing frozen*" silences every warning with
// that prefix.
func NewSuppressor(patterns []string) (*Suppressor, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("suppression pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return &Suppressor{globs: globs}, nil
}

// Warnf records a warning unless a suppression pattern matches it.
// Unsuppressed warnings print immediately.
func (s *Suppressor) Warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)

	for _, g := range s.globs {
		if g.Match(msg) {
			s.mu.Lock()
			s.suppressed++
			s.mu.Unlock()
			return
		}
	}

	s.mu.Lock()
	s.warnings = append(s.warnings, Warning{Message: msg})
	s.mu.Unlock()
	fmt.Printf("⚠️  %s\n", msg)
}

// Reset drops the collected warnings for a new freeze. The compiled
// patterns stay.
func (s *Suppressor) Reset() {
	s.mu.Lock()
	s.warnings = nil
	s.suppressed = 0
	s.mu.Unlock()
}

// Warnings returns the unsuppressed warnings in emission order.
func (s *Suppressor) Warnings() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// Counts returns how many warnings were emitted and suppressed.
func (s *Suppressor) Counts() (emitted, suppressed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.warnings), s.suppressed
}
