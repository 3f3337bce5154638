package registry

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// openers are the tokens after which an entry may follow without a separator.
const openers = "{([:"

// Rule describes where entries go in one registry.
type Rule struct {
	// Registry is the human-readable name used in errors and logs.
	Registry string
	// Anchor is a regular expression whose first match is the region the
	// entry is appended to.
	Anchor string
	// Separator is the list delimiter the region must end with before an
	// entry is added. Line-based registries leave it empty.
	Separator string
	// Fallback, when set, is matched if Anchor is not found. The entry is then
	// wrapped with Block (a format with one %s verb) and spliced after the
	// fallback match, recreating a group a formatter removed.
	Fallback string
	Block    string
}

// AnchorNotFoundError reports a registry document that lacks the expected
// structure. Nothing is modified when it is returned.
type AnchorNotFoundError struct {
	Registry string
	Path     string
	Anchor   string
}

func (e *AnchorNotFoundError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: anchor not found (pattern %q)", e.Registry, e.Anchor)
	}
	return fmt.Sprintf("%s: anchor not found in %s (pattern %q)", e.Registry, e.Path, e.Anchor)
}

var (
	patternsMu sync.Mutex
	patterns   = map[string]*regexp.Regexp{}
)

func compile(pattern string) (*regexp.Regexp, error) {
	patternsMu.Lock()
	defer patternsMu.Unlock()

	if re, ok := patterns[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid anchor pattern %q: %w", pattern, err)
	}
	patterns[pattern] = re
	return re, nil
}

// Patch inserts entry into doc after the region matched by rule.Anchor.
// It reports whether the document changed. A missing anchor (and fallback) is
// an *AnchorNotFoundError even when the entry would already be present.
func Patch(doc string, rule Rule, entry string) (string, bool, error) {
	loc, block, err := locate(doc, rule)
	if err != nil {
		return doc, false, err
	}

	if Present(doc, entry) {
		return doc, false, nil
	}

	region := doc[loc[0]:loc[1]]
	if block {
		entry = fmt.Sprintf(rule.Block, entry)
	} else {
		region = normalize(region, rule.Separator)
		if region != "" && !strings.HasSuffix(region, "\n") {
			entry = "\n" + entry
		}
	}

	var b strings.Builder
	b.Grow(len(doc) + len(entry) + len(rule.Separator) + 1)
	b.WriteString(doc[:loc[0]])
	b.WriteString(region)
	b.WriteString(entry)
	b.WriteString(doc[loc[1]:])
	return b.String(), true, nil
}

// locate finds the splice region for rule. block reports that the fallback
// matched and the entry must be wrapped in rule.Block.
func locate(doc string, rule Rule) (loc []int, block bool, err error) {
	re, err := compile(rule.Anchor)
	if err != nil {
		return nil, false, err
	}
	if loc = re.FindStringIndex(doc); loc != nil {
		return loc, false, nil
	}

	if rule.Fallback != "" {
		fb, err := compile(rule.Fallback)
		if err != nil {
			return nil, false, err
		}
		if loc = fb.FindStringIndex(doc); loc != nil {
			return loc, true, nil
		}
	}
	return nil, false, &AnchorNotFoundError{Registry: rule.Registry, Anchor: rule.Anchor}
}

// Present reports whether the first non-blank line of entry already appears
// as a whole line of doc. Runs of whitespace compare equal, so column
// alignment added by gofmt does not hide an entry.
func Present(doc, entry string) bool {
	key := collapse(firstLine(entry))
	if key == "" {
		return true
	}
	for _, line := range strings.Split(doc, "\n") {
		if collapse(line) == key {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

func collapse(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// normalize makes the last code line of region end with sep. Trailing
// comment lines are skipped, and whitespace after the separator stays in
// place. Regions whose last code line ends in an opening token are left alone.
func normalize(region, sep string) string {
	if sep == "" {
		return region
	}
	end := len(strings.TrimRight(region, " \t\r\n"))
	for end > 0 {
		start := strings.LastIndexByte(region[:end], '\n') + 1
		line := strings.TrimSpace(region[start:end])
		if strings.HasPrefix(line, "//") {
			end = len(strings.TrimRight(region[:start], " \t\r\n"))
			continue
		}
		if strings.HasSuffix(line, sep) || strings.ContainsAny(line[len(line)-1:], openers) {
			return region
		}
		return region[:end] + sep + region[end:]
	}
	return region
}

// Step is one planned registry edit.
type Step struct {
	Rule  Rule
	Path  string // relative to the project root
	Entry string
}

// Document is a registry file held in memory while steps are applied to it.
type Document struct {
	Path     string
	Original string
	Content  string
}

// NewDocument returns a document whose content starts as its original bytes.
func NewDocument(path string, content []byte) *Document {
	return &Document{Path: path, Original: string(content), Content: string(content)}
}

// Apply patches the document in place.
func (d *Document) Apply(step Step) (bool, error) {
	out, changed, err := Patch(d.Content, step.Rule, step.Entry)
	if err != nil {
		var anchorErr *AnchorNotFoundError
		if errors.As(err, &anchorErr) {
			anchorErr.Path = d.Path
		}
		return false, err
	}
	d.Content = out
	return changed, nil
}

// Changed reports whether any applied step modified the document.
func (d *Document) Changed() bool {
	return d.Content != d.Original
}
