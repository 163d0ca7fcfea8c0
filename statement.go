package sqlexec

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Statement is one executable unit parsed out of a SQL file, together
// with the directive metadata that preceded it. Statements are immutable
// once parsed; the index is assigned by position of appearance (0-based)
// and is stable across re-parses of identical text.
type Statement struct {
	index    int
	name     string
	text     string
	pageSize int // 0 means no PAGINATE SIZE directive
	rowLimit int // -1 means no ROW LIMIT directive
}

// Index returns the statement's 0-based position in the source file.
// Blank statements do not consume index slots.
func (s Statement) Index() int { return s.index }

// Name returns the identifier from a NAME directive, or "" if the
// statement is unnamed.
func (s Statement) Name() string { return s.name }

// Text returns the statement text with directive comments stripped and
// surrounding whitespace trimmed. Ordinary comments are preserved.
func (s Statement) Text() string { return s.text }

// PageSize returns the PAGINATE SIZE directive value. ok is false when
// the statement carries no such directive.
func (s Statement) PageSize() (n int, ok bool) {
	return s.pageSize, s.pageSize > 0
}

// RowLimit returns the ROW LIMIT directive value. ok is false when the
// statement carries no such directive. A present limit of zero is legal
// and means the statement yields no rows.
func (s Statement) RowLimit() (n int, ok bool) {
	if s.rowLimit < 0 {
		return 0, false
	}
	return s.rowLimit, true
}

// EffectivePageSize resolves the page size for this statement: the
// PAGINATE SIZE directive always wins over the caller's ambient default.
// Priority: directive > fallback > DefaultPageSize.
func (s Statement) EffectivePageSize(fallback int) int {
	if s.pageSize > 0 {
		return s.pageSize
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultPageSize
}

// EffectiveRowLimit resolves the row cap for this statement: the ROW
// LIMIT directive always wins over the caller's ambient default.
// fallback < 0 means the caller imposes no cap; the second return is
// false when no cap applies at all.
func (s Statement) EffectiveRowLimit(fallback int) (int, bool) {
	if s.rowLimit >= 0 {
		return s.rowLimit, true
	}
	if fallback >= 0 {
		return fallback, true
	}
	return 0, false
}

// Checksum returns a stable fingerprint of the statement text. Two
// parses of identical text produce identical checksums, which makes it
// usable for log correlation and for validating checkpoints against a
// re-read of the source file.
func (s Statement) Checksum() uint64 {
	return xxhash.Sum64String(s.text)
}

// LogName returns the NAME directive if present, otherwise a short form
// of the checksum for log output.
func (s Statement) LogName() string {
	if s.name != "" {
		return s.name
	}
	return fmt.Sprintf("stmt-%x", s.Checksum())
}

// Script is the parsed form of one SQL file: an ordered sequence of
// statements plus any non-fatal parse warnings. A Script owns its
// statements; they are not modified after Parse returns.
type Script struct {
	statements []Statement
	warnings   []string
}

// Statements returns the parsed statements in file order.
func (s *Script) Statements() []Statement { return s.statements }

// Len returns the number of statements.
func (s *Script) Len() int { return len(s.statements) }

// Warnings returns non-fatal parse diagnostics, such as a trailing
// directive block with no statement to bind to.
func (s *Script) Warnings() []string { return s.warnings }

// Checksum returns a fingerprint over every statement's text, in order.
// Used by the checkpoint to detect that a source file changed between
// runs.
func (s *Script) Checksum() uint64 {
	h := xxhash.New()
	for _, st := range s.statements {
		_, _ = h.WriteString(st.text)
		_, _ = h.WriteString(";")
	}
	return h.Sum64()
}

// ByIndex returns the statement at index i, or an error wrapping
// ErrNoSuchIndex when i is out of bounds.
func (s *Script) ByIndex(i int) (Statement, error) {
	if i < 0 || i >= len(s.statements) {
		return Statement{}, fmt.Errorf("%w: %d (script has %d)", ErrNoSuchIndex, i, len(s.statements))
	}
	return s.statements[i], nil
}

// ByName returns the first statement in file order whose NAME directive
// equals name, or an error wrapping ErrNoSuchName. When several
// statements share a name, the first one wins; give statements unique
// names if you rely on this lookup.
func (s *Script) ByName(name string) (Statement, error) {
	for _, st := range s.statements {
		if st.name == name {
			return st, nil
		}
	}
	return Statement{}, fmt.Errorf("%w: %q", ErrNoSuchName, name)
}

// String implements fmt.Stringer with a short summary for logs.
func (s *Script) String() string {
	names := make([]string, 0, len(s.statements))
	for _, st := range s.statements {
		names = append(names, st.LogName())
	}
	return fmt.Sprintf("script(%d: %s)", len(s.statements), strings.Join(names, ", "))
}
