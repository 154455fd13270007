package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shirelang/shire/pkg/ast"
	"github.com/shirelang/shire/pkg/hobbit"
)

// ParseError is a frontmatter entry that could not be parsed. The entry is
// skipped and parsing carries on.
type ParseError struct {
	// Line is the 0-based document line of the entry key.
	Line int
	Key  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line+1, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// entry is one `key: value` item. Value holds the inline text followed by any
// continuation lines; block holds the continuation lines alone.
type entry struct {
	key    string
	inline string
	block  []string
	line   int
}

func (e entry) value() string {
	if len(e.block) == 0 {
		return e.inline
	}
	return e.inline + "\n" + strings.Join(e.block, "\n")
}

// nested reports whether the entry is an indented object: an empty inline
// value followed by indented lines.
func (e entry) nested() bool {
	return strings.TrimSpace(e.inline) == "" && len(e.block) > 0
}

// splitEntries cuts frontmatter lines into entries. base is the document
// line of lines[0].
func splitEntries(lines []string, base int) ([]entry, []error) {
	var (
		entries []entry
		errs    []error
	)
	for i := 0; i < len(lines); {
		line := lines[i]
		if isBlank(line) || strings.HasPrefix(strings.TrimSpace(line), "#") {
			i++
			continue
		}
		if isIndented(line) {
			errs = append(errs, &ParseError{Line: base + i, Key: strings.TrimSpace(line), Err: errors.New("unexpected indentation")})
			i++
			continue
		}
		key, rest, err := splitKey(line)
		if err != nil {
			errs = append(errs, &ParseError{Line: base + i, Key: strings.TrimSpace(line), Err: err})
			i++
			continue
		}
		depth := bracketDepth(rest)
		j := i + 1
		for j < len(lines) {
			l := lines[j]
			if isBlank(l) {
				k := j + 1
				for k < len(lines) && isBlank(lines[k]) {
					k++
				}
				if depth > 0 || (k < len(lines) && isIndented(lines[k])) {
					j++
					continue
				}
				break
			}
			if depth <= 0 && !isIndented(l) {
				break
			}
			depth += bracketDepth(l)
			j++
		}
		entries = append(entries, entry{key: key, inline: rest, block: lines[i+1 : j], line: base + i})
		i = j
	}
	return entries, errs
}

func isBlank(s string) bool    { return strings.TrimSpace(s) == "" }
func isIndented(s string) bool { return s != "" && (s[0] == ' ' || s[0] == '\t') }

// splitKey splits `key: rest`. Keys are bare words or quoted strings.
func splitKey(line string) (key, rest string, err error) {
	if q := line[0]; q == '"' || q == '\'' {
		end := closingQuote(line, 0)
		if end < 0 {
			return "", "", errors.New("unterminated key")
		}
		key = line[1:end]
		after := strings.TrimLeft(line[end+1:], " \t")
		if !strings.HasPrefix(after, ":") {
			return "", "", fmt.Errorf("expected ':' after key %q", key)
		}
		return key, strings.TrimSpace(after[1:]), nil
	}
	idx := strings.IndexByte(line, ':')
	if idx <= 0 {
		return "", "", errors.New("expected 'key: value'")
	}
	key = strings.TrimSpace(line[:idx])
	for _, c := range []byte(key) {
		if !isIdentPart(c) && c != '-' && c != '.' {
			return "", "", fmt.Errorf("invalid key %q", key)
		}
	}
	return key, strings.TrimSpace(line[idx+1:]), nil
}

func closingQuote(s string, start int) int {
	q := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case q:
			return i
		}
	}
	return -1
}

// bracketDepth counts the brackets a line leaves open. Quoted text is
// skipped; a quote directly after a letter or digit is an apostrophe.
func bracketDepth(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '\'':
			if i > 0 && isIdentPart(s[i-1]) {
				continue
			}
			end := closingQuote(s, i)
			if end < 0 {
				return depth
			}
			i = end
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			depth--
		}
	}
	return depth
}

// dedent strips the common leading whitespace of non-blank lines.
func dedent(lines []string) []string {
	prefix := -1
	for _, l := range lines {
		if isBlank(l) {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if prefix < 0 || n < prefix {
			prefix = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= prefix && prefix > 0 {
			out[i] = l[prefix:]
		} else {
			out[i] = strings.TrimLeft(l, " \t")
		}
	}
	return out
}

type pair struct {
	key   string
	value ast.Value
}

// parseFrontMatter builds a Hole from the lines between the markers. base is
// the document line of the first frontmatter line.
func parseFrontMatter(lines []string, base int) (*hobbit.Hole, []error) {
	b := &holeBuilder{hole: hobbit.New()}
	entries, errs := splitEntries(lines, base)
	b.errs = errs
	for _, e := range entries {
		if err := b.apply(e); err != nil {
			b.errs = append(b.errs, &ParseError{Line: e.line, Key: e.key, Err: err})
		}
	}
	return b.hole, b.errs
}

type holeBuilder struct {
	hole *hobbit.Hole
	errs []error
}

func (b *holeBuilder) apply(e entry) error {
	h := b.hole
	switch e.key {
	case hobbit.KeyName:
		return b.text(e, &h.Name)
	case hobbit.KeyDescription:
		return b.text(e, &h.Description)
	case hobbit.KeyShortcut:
		return b.text(e, &h.Shortcut)
	case hobbit.KeyAgent:
		return b.text(e, &h.Agent)
	case hobbit.KeyInteraction:
		var s string
		if err := b.text(e, &s); err != nil {
			return err
		}
		it, err := hobbit.ParseInteractionType(s)
		if err != nil {
			return err
		}
		h.Interaction = it
	case hobbit.KeyActionLocation:
		var s string
		if err := b.text(e, &s); err != nil {
			return err
		}
		loc, err := hobbit.ParseActionLocation(s)
		if err != nil {
			return err
		}
		h.ActionLocation = loc
	case hobbit.KeyEnabled:
		v, err := ParseLiteral(e.value())
		if err != nil {
			return err
		}
		enabled, ok := v.(ast.BoolValue)
		if !ok {
			return fmt.Errorf("expected true or false, got %s", v.Display())
		}
		h.Enabled = bool(enabled)
	case hobbit.KeyWhen:
		src := strings.TrimSpace(e.value())
		if strings.HasPrefix(src, "{") && strings.HasSuffix(src, "}") {
			src = src[1 : len(src)-1]
		}
		stmt, err := ParseExpression(src)
		if err != nil {
			return err
		}
		h.When = stmt
	case hobbit.KeyData:
		v, err := ParseLiteral(e.value())
		if err != nil {
			return err
		}
		arr, ok := v.(ast.ArrayValue)
		if !ok {
			return fmt.Errorf("expected an array, got %s", v.Display())
		}
		h.Data = arr
	case hobbit.KeyFilenameRules:
		pairs, err := b.pairs(e)
		if err != nil {
			return err
		}
		for _, p := range pairs {
			h.FilenameRules = append(h.FilenameRules, hobbit.FilenameRule{Pattern: p.key, Instruction: p.value.String()})
		}
	case hobbit.KeyVariables:
		pairs, err := b.pairs(e)
		if err != nil {
			return err
		}
		for _, p := range pairs {
			h.SetVariable(p.key, p.value)
		}
	case hobbit.KeyOnStreamingEnd:
		pa, err := ParsePatternAction(e.value())
		if err != nil {
			return err
		}
		h.OnStreamingEnd = pa
	case hobbit.KeyAfterStreaming:
		pa, err := ParsePatternAction(e.value())
		if err != nil {
			return err
		}
		h.AfterStreaming = pa
	default:
		if e.nested() {
			pairs, err := b.pairs(e)
			if err != nil {
				return err
			}
			obj := ast.NewObjectValue()
			for _, p := range pairs {
				obj.Set(p.key, p.value)
			}
			h.UserData[e.key] = obj
			return nil
		}
		v, err := ParseLiteral(e.value())
		if err != nil {
			return err
		}
		h.UserData[e.key] = v
	}
	return nil
}

func (b *holeBuilder) text(e entry, dst *string) error {
	v, err := ParseLiteral(e.value())
	if err != nil {
		return err
	}
	*dst = v.String()
	return nil
}

// pairs returns the items of an object entry, written either inline or as
// indented lines. Malformed indented items are recorded and skipped.
func (b *holeBuilder) pairs(e entry) ([]pair, error) {
	if !e.nested() {
		v, err := ParseLiteral(e.value())
		if err != nil {
			return nil, err
		}
		obj, ok := v.(*ast.ObjectValue)
		if !ok {
			return nil, fmt.Errorf("expected an object, got %s", v.Display())
		}
		out := make([]pair, len(obj.Keys))
		for i, k := range obj.Keys {
			out[i] = pair{key: k, value: obj.Values[k]}
		}
		return out, nil
	}

	children, errs := splitEntries(dedent(e.block), e.line+1)
	b.errs = append(b.errs, errs...)
	var out []pair
	for _, c := range children {
		v, err := ParseLiteral(c.value())
		if err != nil {
			b.errs = append(b.errs, &ParseError{Line: c.line, Key: e.key + "." + c.key, Err: err})
			continue
		}
		out = append(out, pair{key: c.key, value: v})
	}
	return out, nil
}
