// Package nameparse splits free-form personal names into title, first,
// middle, last and suffix, and renders names in presentation case.
package nameparse

import (
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
)

// CaseMode controls how the parsed name fields are cased.
type CaseMode string

// Supported case modes.
const (
	CaseNone   CaseMode = "none"
	CaseProper CaseMode = "proper"
	CaseUpper  CaseMode = "upper"
	CaseLower  CaseMode = "lower"
)

// ParseCaseMode validates a case mode name. An empty string means CaseNone.
func ParseCaseMode(s string) (CaseMode, error) {
	switch m := CaseMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return CaseNone, nil
	case CaseNone, CaseProper, CaseUpper, CaseLower:
		return m, nil
	default:
		return "", eris.Errorf("nameparse: unknown case mode %q", s)
	}
}

// Result is the outcome of parsing one raw name. Title and Suffix are
// empty when absent. ParseType is the matching template (1-10), or 0.
type Result struct {
	Original  string `json:"original" yaml:"original" csv:"original"`
	Cleaned   string `json:"cleaned" yaml:"cleaned" csv:"cleaned"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty" csv:"title"`
	Suffix    string `json:"suffix,omitempty" yaml:"suffix,omitempty" csv:"suffix"`
	Parsed    bool   `json:"parsed" yaml:"parsed" csv:"parsed"`
	ParseType int    `json:"parse_type" yaml:"parse_type" csv:"parse_type"`
	First     string `json:"first" yaml:"first" csv:"first"`
	Middle    string `json:"middle" yaml:"middle" csv:"middle"`
	Last      string `json:"last" yaml:"last" csv:"last"`
}

// Stats is a snapshot of a parser's counters.
type Stats struct {
	Seen   int64 `json:"seen" yaml:"seen"`
	Parsed int64 `json:"parsed" yaml:"parsed"`
}

// Option configures a Parser.
type Option func(*Parser)

// WithCatalog replaces the built-in catalog.
func WithCatalog(c *Catalog) Option {
	return func(p *Parser) {
		if c != nil {
			p.catalog = c
		}
	}
}

// WithCaseMode sets the casing applied to first, middle and last.
func WithCaseMode(m CaseMode) Option {
	return func(p *Parser) { p.caseMode = m }
}

// WithProperCase swaps the proper-case renderer.
func WithProperCase(fn CaseFunc) Option {
	return func(p *Parser) {
		if fn != nil {
			p.proper = fn
		}
	}
}

// WithFoldDiacritics folds accented letters to ASCII before cleaning.
func WithFoldDiacritics(on bool) Option {
	return func(p *Parser) { p.fold = on }
}

// WithLiteralEscape keeps ";" through cleaning so a surname can be forced
// with the ";rest" escape.
func WithLiteralEscape(on bool) Option {
	return func(p *Parser) { p.escape = on }
}

// WithMultiWordLastName lets the surname span several words.
func WithMultiWordLastName(on bool) Option {
	return func(p *Parser) {
		if on {
			p.surname = SurnameMulti
		} else {
			p.surname = SurnameSingle
		}
	}
}

// Parser parses names against a catalog and counts what it has seen.
// A Parser is safe for concurrent use.
type Parser struct {
	catalog  *Catalog
	caseMode CaseMode
	proper   CaseFunc
	fold     bool
	escape   bool
	surname  SurnameMode

	seen   atomic.Int64
	parsed atomic.Int64
}

// New creates a Parser with zeroed counters.
func New(opts ...Option) *Parser {
	p := &Parser{
		catalog:  DefaultCatalog(),
		caseMode: CaseNone,
		proper:   ProperCase,
		surname:  SurnameSingle,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse cleans raw, extracts title and suffix, and decomposes the rest.
// Unparseable input yields Parsed=false; Parse never fails.
func (p *Parser) Parse(raw string) Result {
	return p.parse(raw, p.surname)
}

// ParseGivenNames is Parse for input that carries no surname, such as a
// first-and-middle column. Every kept token lands in First or Middle.
func (p *Parser) ParseGivenNames(raw string) Result {
	return p.parse(raw, SurnameNone)
}

func (p *Parser) parse(raw string, mode SurnameMode) Result {
	p.seen.Add(1)

	cleaned := p.Clean(raw)
	title, suffix, rest := p.catalog.split(cleaned)
	parts := p.catalog.Decompose(rest, mode)
	if parts.Parsed {
		p.parsed.Add(1)
	}

	return Result{
		Original:  raw,
		Cleaned:   cleaned,
		Title:     title,
		Suffix:    suffix,
		Parsed:    parts.Parsed,
		ParseType: parts.ParseType,
		First:     p.applyCase(parts.First),
		Middle:    p.applyCase(parts.Middle),
		Last:      p.applyCase(parts.Last),
	}
}

// Clean normalizes raw according to the parser options.
func (p *Parser) Clean(raw string) string {
	if p.fold {
		raw = FoldDiacritics(raw)
	}
	if p.escape {
		return cleanWith(raw, illegalEscapedRe)
	}
	return Clean(raw)
}

// Title returns the leading honorific of name.
func (p *Parser) Title(name string) string {
	return p.catalog.Title(name)
}

// Suffix returns the trailing suffix of name.
func (p *Parser) Suffix(name string) string {
	return p.catalog.Suffix(name)
}

// NameParts decomposes an already stripped name. noLastName overrides the
// parser's surname mode.
func (p *Parser) NameParts(name string, noLastName bool) Parts {
	if noLastName {
		return p.catalog.Decompose(name, SurnameNone)
	}
	return p.catalog.Decompose(name, p.surname)
}

// ProperCase renders name with the parser's proper-case function.
func (p *Parser) ProperCase(name string) string {
	return p.proper(name)
}

// Stats returns the current counters.
func (p *Parser) Stats() Stats {
	return Stats{Seen: p.seen.Load(), Parsed: p.parsed.Load()}
}

func (p *Parser) applyCase(s string) string {
	if s == "" {
		return s
	}
	switch p.caseMode {
	case CaseProper:
		return p.proper(s)
	case CaseUpper:
		return strings.ToUpper(s)
	case CaseLower:
		return strings.ToLower(s)
	default:
		return s
	}
}

// Title returns the leading honorific of name using the built-in catalog.
func Title(name string) string { return defaultCatalog.Title(name) }

// Suffix returns the trailing suffix of name using the built-in catalog.
func Suffix(name string) string { return defaultCatalog.Suffix(name) }

// StripTitleAndSuffix removes title and suffix using the built-in catalog.
func StripTitleAndSuffix(name string) string { return defaultCatalog.StripTitleAndSuffix(name) }

// NameParts decomposes name using the built-in catalog.
func NameParts(name string, noLastName bool) Parts {
	return defaultCatalog.NameParts(name, noLastName)
}
