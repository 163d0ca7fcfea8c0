package sqlexec

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse segments raw SQL text into an ordered Script of statements.
//
// Statements are split on the terminator ';' wherever it appears outside
// string literals ('...', "...") and comments (-- ..., /* ... */). The
// comment span immediately preceding a statement's first SQL token is
// scanned for directives:
//
//	/* NAME <identifier> */
//	/* PAGINATE SIZE <positive integer> */
//	/* ROW LIMIT <non-negative integer> */
//
// Directive keywords are case-insensitive and each directive occupies its
// own comment. Directive comments are stripped from the statement text;
// every other comment is forwarded to the backend untouched. If the same
// directive appears twice in one block, the occurrence nearest the
// statement wins. Blank statements are dropped and do not consume an
// index slot. A directive block with no statement to bind to is discarded
// with a warning on the Script.
//
// Parse fails with *ParseError only on malformed directive syntax, never
// on unrecognized SQL content.
func Parse(text string) (*Script, error) {
	script := &Script{}
	for _, seg := range splitStatements(text) {
		stmt, blank, err := buildStatement(seg, script)
		if err != nil {
			return nil, err
		}
		if blank {
			continue
		}
		stmt.index = len(script.statements)
		script.statements = append(script.statements, stmt)
	}
	return script, nil
}

// segment is the raw text between two statement terminators.
type segment struct {
	text string
	line int // 1-based line of the segment's first character
}

// splitStatements cuts text on ';' outside literals and comments. The
// terminator itself is not part of any segment.
func splitStatements(text string) []segment {
	const (
		stNormal = iota
		stSingle // inside '...'
		stDouble // inside "..."
		stLine   // inside -- comment
		stBlock  // inside /* comment */
	)

	var segs []segment
	state := stNormal
	line := 1
	segLine := 1
	start := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '\n' {
			line++
		}
		switch state {
		case stNormal:
			switch {
			case c == '\'':
				state = stSingle
			case c == '"':
				state = stDouble
			case c == '-' && i+1 < len(text) && text[i+1] == '-':
				state = stLine
				i++
			case c == '/' && i+1 < len(text) && text[i+1] == '*':
				state = stBlock
				i++
			case c == ';':
				segs = append(segs, segment{text: text[start:i], line: segLine})
				start = i + 1
				segLine = line
			}
		case stSingle:
			if c == '\'' {
				state = stNormal
			}
		case stDouble:
			if c == '"' {
				state = stNormal
			}
		case stLine:
			if c == '\n' {
				state = stNormal
			}
		case stBlock:
			if c == '*' && i+1 < len(text) && text[i+1] == '/' {
				state = stNormal
				i++
			}
		}
	}
	if start < len(text) {
		segs = append(segs, segment{text: text[start:], line: segLine})
	}
	return segs
}

// buildStatement scans the leading comment span of one segment for
// directives, strips directive comments, and assembles the Statement.
// blank is true when the segment holds no statement body; any directives
// found in a blank segment are discarded with a script warning.
func buildStatement(seg segment, script *Script) (stmt Statement, blank bool, err error) {
	stmt.rowLimit = -1

	src := seg.text
	line := seg.line
	var stripped strings.Builder // segment minus directive comments
	sawDirective := false

	i := 0
	for i < len(src) {
		// Whitespace between leading comments stays part of the span.
		if isSpace(src[i]) {
			if src[i] == '\n' {
				line++
			}
			stripped.WriteByte(src[i])
			i++
			continue
		}
		// Line comments are never directives; forward them.
		if src[i] == '-' && i+1 < len(src) && src[i+1] == '-' {
			end := strings.IndexByte(src[i:], '\n')
			if end < 0 {
				end = len(src) - i
			}
			stripped.WriteString(src[i : i+end])
			i += end
			continue
		}
		if src[i] == '/' && i+1 < len(src) && src[i+1] == '*' {
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				// Unterminated comment; not a directive problem, let the
				// backend complain about the text as written.
				stripped.WriteString(src[i:])
				i = len(src)
				break
			}
			body := src[i+2 : i+2+end]
			matched, derr := applyDirective(body, line, &stmt)
			if derr != nil {
				return Statement{}, false, derr
			}
			if matched {
				sawDirective = true
				// Directive comments are stripped, not forwarded.
			} else {
				stripped.WriteString(src[i : i+2+end+2])
			}
			line += strings.Count(body, "\n")
			i += 2 + end + 2
			continue
		}
		// First SQL token: the directive span is over.
		break
	}
	stripped.WriteString(src[i:])

	text := strings.TrimSpace(stripped.String())
	if text == "" {
		if sawDirective {
			script.warnings = append(script.warnings,
				fmt.Sprintf("line %d: directive block has no statement to bind to; discarded", seg.line))
		}
		return Statement{}, true, nil
	}
	stmt.text = text
	return stmt, false, nil
}

// applyDirective interprets one comment body. It returns matched=false
// for ordinary comments and an error for a comment that starts like a
// directive but is malformed. Later directives overwrite earlier ones of
// the same kind, so the comment nearest the statement wins.
func applyDirective(body string, line int, stmt *Statement) (matched bool, err error) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return false, nil
	}
	switch strings.ToUpper(fields[0]) {
	case "NAME":
		if len(fields) != 2 || !isIdentifier(fields[1]) {
			return false, &ParseError{Line: line, Detail: fmt.Sprintf("NAME directive needs a single identifier, got %q", body)}
		}
		stmt.name = fields[1]
		return true, nil

	case "PAGINATE":
		if len(fields) < 2 || !strings.EqualFold(fields[1], "SIZE") {
			return false, nil // "PAGINATE" alone is just a comment
		}
		if len(fields) != 3 {
			return false, &ParseError{Line: line, Detail: fmt.Sprintf("PAGINATE SIZE directive needs a single integer, got %q", body)}
		}
		n, perr := strconv.Atoi(fields[2])
		if perr != nil || n <= 0 {
			return false, &ParseError{Line: line, Detail: fmt.Sprintf("PAGINATE SIZE must be a positive integer, got %q", fields[2])}
		}
		stmt.pageSize = n
		return true, nil

	case "ROW":
		if len(fields) < 2 || !strings.EqualFold(fields[1], "LIMIT") {
			return false, nil
		}
		if len(fields) != 3 {
			return false, &ParseError{Line: line, Detail: fmt.Sprintf("ROW LIMIT directive needs a single integer, got %q", body)}
		}
		n, perr := strconv.Atoi(fields[2])
		if perr != nil || n < 0 {
			return false, &ParseError{Line: line, Detail: fmt.Sprintf("ROW LIMIT must be a non-negative integer, got %q", fields[2])}
		}
		stmt.rowLimit = n
		return true, nil
	}
	return false, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return len(s) > 0
}
