// Package testfile implements the streaming test-definition language.
//
// A test-definition file is line-oriented text. Lines whose trimmed content
// starts with '#' are directives toggling parser flags. Everything else is
// scanned character by character: '{' and '}' delimit blocks (nestable, the
// outermost pair is stripped), and "->" between two top-level blocks pipes an
// input block into its expected-output block.
//
// Parsing is lazy and forward-only: each Scan call consumes just enough of
// the underlying reader to produce the next record. Re-reading a file
// requires reopening it.
package testfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// SimpleTest is one parsed input/expected-output pair. It is never
// persisted; the cache document stores either literal pairs or paths to the
// files these records come from.
type SimpleTest struct {
	Input          string
	ExpectedOutput string
}

// Parser flags, toggled by "#flag" / "#modifier:flag" directive lines.
const (
	// FlagStandalone emits a record after every top-level block, with an
	// empty expected output. Used for files that hold only inputs (or only
	// outputs, paired later by Merge).
	FlagStandalone = "standalone"

	// FlagTrim strips each emitted block: surrounding whitespace overall
	// and each internal line individually. Enabled by default.
	FlagTrim = "trim"

	// FlagExplicitNewline disables the implicit newline at the end of each
	// physical line and instead activates "\n" escapes inside blocks.
	FlagExplicitNewline = "explicit-newline"
)

type modifier int

const (
	modifierSame modifier = iota
	modifierEnable
	modifierDisable
)

func modifierFromString(s string) modifier {
	switch strings.ToLower(s) {
	case "enable":
		return modifierEnable
	case "disable":
		return modifierDisable
	default:
		return modifierSame
	}
}

// ParseError reports a fatal format error in a test-definition file.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Source is a forward-only stream of parsed records, in the style of
// bufio.Scanner. Both Parser and Merged implement it.
type Source interface {
	// Scan advances to the next record. It returns false at end of input
	// or on error; Err distinguishes the two.
	Scan() bool

	// Test returns the record produced by the last successful Scan.
	Test() SimpleTest

	// Err returns the first error encountered, nil on clean end of input.
	Err() error
}

// Parser is the stateful streaming tokenizer over one test-definition file.
//
// State carried between lines: the brace-nesting counter, the block buffer,
// the arrow count since the last input block, the record in progress, and
// the directive flags.
type Parser struct {
	lines  *bufio.Scanner
	closer io.Closer

	flags    map[string]bool
	buf      strings.Builder
	nesting  int
	arrows   int
	cur      SimpleTest
	skipNext bool
	line     int

	test SimpleTest
	err  error
	done bool
}

// NewParser returns a Parser reading from r with default flags
// (standalone=false, trim=true, explicit-newline=false).
func NewParser(r io.Reader) *Parser {
	return &Parser{
		lines: bufio.NewScanner(r),
		flags: map[string]bool{
			FlagStandalone:      false,
			FlagTrim:            true,
			FlagExplicitNewline: false,
		},
	}
}

// Open opens path and returns a Parser over it. The caller owns the file;
// Close releases it.
func Open(path string) (*Parser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	p := NewParser(f)
	p.closer = f
	return p, nil
}

// SetFlag forces a flag before scanning starts, overriding its default.
// Directives inside the file can still change it later.
func (p *Parser) SetFlag(name string, on bool) {
	if _, known := p.flags[name]; known {
		p.flags[name] = on
	}
}

// Close releases the underlying file, if the Parser owns one.
func (p *Parser) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// Test returns the record produced by the last successful Scan.
func (p *Parser) Test() SimpleTest { return p.test }

// Err returns the first error encountered. End of file with an unfinished
// record is not an error; the partial record is discarded.
func (p *Parser) Err() error { return p.err }

// Scan consumes lines until a complete record is emitted. It returns false
// at end of file or on a fatal format error.
func (p *Parser) Scan() bool {
	if p.err != nil || p.done {
		return false
	}
	// Escape state does not survive across records.
	p.skipNext = false

	for p.lines.Scan() {
		p.line++
		line := p.lines.Text()

		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			p.applyDirective(line)
			continue
		}

		emitted, err := p.consumeLine(line)
		if err != nil {
			p.err = err
			return false
		}
		if emitted {
			return true
		}
	}

	if err := p.lines.Err(); err != nil {
		p.err = err
	}
	p.done = true
	return false
}

// applyDirective toggles a recognized flag. Unrecognized flag names and
// unrecognized modifiers are silently ignored.
func (p *Parser) applyDirective(line string) {
	full := line[strings.Index(line, "#")+1:]

	name := full
	mod := modifierEnable
	if modStr, flag, ok := strings.Cut(full, ":"); ok {
		mod = modifierFromString(modStr)
		name = strings.TrimSpace(flag)
	}

	if _, known := p.flags[name]; !known || mod == modifierSame {
		return
	}
	p.flags[name] = mod == modifierEnable
}

// consumeLine scans one physical line. When a record completes mid-line the
// remainder of the line is discarded, matching the streaming contract that
// each record boundary realigns the scanner to the next line.
func (p *Parser) consumeLine(line string) (bool, error) {
	runes := []rune(line)

	for i := 0; i < len(runes); i++ {
		if p.skipNext {
			p.skipNext = false
			continue
		}

		switch ch := runes[i]; ch {
		case '{':
			p.nesting++

		case '-':
			if i+1 < len(runes) && runes[i+1] == '>' {
				p.arrows++
			} else if p.nesting > 0 {
				p.buf.WriteRune('-')
			}

		case '\\':
			// Escapes are only active under explicit-newline; otherwise
			// backslashes pass through as content.
			if p.flags[FlagExplicitNewline] && i+1 < len(runes) && runes[i+1] == 'n' {
				p.buf.WriteRune('\n')
				p.skipNext = true
			} else if p.nesting > 0 {
				p.buf.WriteRune('\\')
			}

		case '}':
			p.nesting--
			if p.nesting < 0 {
				return false, &ParseError{Line: p.line, Msg: "unmatched closing bracket"}
			}
			if p.nesting > 0 {
				continue
			}
			emitted, err := p.closeBlock()
			if err != nil {
				return false, err
			}
			if emitted {
				return true, nil
			}

		default:
			if p.nesting > 0 {
				p.buf.WriteRune(ch)
			}
		}
	}

	// Preserve line structure inside multi-line blocks. The append is gated
	// on being inside a block so blank lines between blocks cannot leak
	// into the next block's buffer.
	if !p.flags[FlagExplicitNewline] && p.nesting > 0 {
		p.buf.WriteByte('\n')
	}
	return false, nil
}

// closeBlock handles the nesting counter returning to zero: the buffered
// text becomes the input or the expected output of the record in progress.
func (p *Parser) closeBlock() (bool, error) {
	text := p.buf.String()
	if p.flags[FlagTrim] {
		text = trimBlock(text)
	}

	switch {
	case p.cur.Input == "":
		p.cur.Input = text
		p.buf.Reset()
		p.arrows = 0
		if p.flags[FlagStandalone] {
			p.emit()
			return true, nil
		}

	case p.cur.ExpectedOutput == "" && p.arrows == 1:
		p.cur.ExpectedOutput = text
		p.buf.Reset()
		p.arrows = 0
		p.emit()
		return true, nil

	case p.arrows != 1:
		return false, &ParseError{Line: p.line, Msg: "every input must be piped to output with '->'"}
	}

	return false, nil
}

func (p *Parser) emit() {
	p.test = p.cur
	p.cur = SimpleTest{}
}

// trimBlock strips surrounding whitespace and trims each internal line.
func trimBlock(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "\n")
}
