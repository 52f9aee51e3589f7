package nameparse

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

const (
	// nameChars is the character class of a full name token.
	nameChars = `A-Za-z0-9\-'`
	// initialPat matches a single-letter initial with an optional period.
	initialPat = `([A-Za-z])\.?`
	// tokenPat matches a full name token.
	tokenPat = `([` + nameChars + `]+)`

	templateCount = 10
)

// DefaultTitles lists honorific patterns in priority order. Longer forms
// must precede the prefixes that would shadow them ("Mr. and Mrs." before
// "Mr.", "Lt. Col." before "Lt.").
var DefaultTitles = []string{
	`Mr\.? (?:and|&) Mrs\.?`,
	`Dr\.? (?:and|&) Mrs\.?`,
	`Mrs\.?`,
	`M/s\.?`,
	`Ms\.?`,
	`Mx\.?`,
	`Miss\.?`,
	`Mme\.?`,
	`Mr\.?`,
	`Messrs\.?`,
	`Mister`,
	`Mast(?:\.|er)?`,
	`Ms?gr\.?`,
	`Sir`,
	`Lord`,
	`Lady`,
	`Madame?`,
	`Dame`,

	// medical
	`Dr\.?`,
	`Doctor`,
	`Sister`,
	`Matron`,

	// legal
	`Judge`,
	`Justice`,

	// police
	`Det\.?`,
	`Insp\.?`,

	// military
	`Brig(?:adier)?\.?`,
	`Capt(?:\.|ain)?`,
	`Commander`,
	`Commodore`,
	`Cdr\.?`,
	`Colonel`,
	`Gen(?:\.|eral)?`,
	`Field Marshall?`,
	`Fl\.? Off\.?`,
	`Flight Officer`,
	`Flt\.? Lt\.?`,
	`Flight Lieutenant`,
	`Pte\.`,
	`Private`,
	`Sgt\.?`,
	`Sargent`,
	`Air Commander`,
	`Air Commodore`,
	`Air Marshall?`,
	`Lieutenant Colonel`,
	`Lt\.? Col\.?`,
	`Lt\.? Gen\.?`,
	`Lt\.? Cdr\.?`,
	`Lieutenant`,
	`(?:Lt|Leut|Lieut)\.?`,
	`Col\.?`,
	`Major General`,
	`Maj\.? Gen\.?`,
	`Major`,
	`Maj\.?`,

	// religious
	`Rabbi`,
	`Brother`,
	`Father`,
	`Chaplain`,
	`Pastor`,
	`Bishop`,
	`Mother Superior`,
	`Mother`,
	`Most Rever[ea]nd`,
	`Very Rever[ea]nd`,
	`Mt\.? Revd\.?`,
	`V\.? Revd?\.?`,
	`Rever[ea]nd`,
	`Revd?\.?`,

	// other
	`Prof(?:\.|essor)?`,
	`Ald(?:\.|erman)?`,
}

// DefaultSuffixes lists suffix patterns in priority order. Compound forms
// precede their bare components so "Jr. Esq." is never cut down to "Esq.".
// Roman numerals are case-sensitive; everything wrapped in (?i:) is not.
var DefaultSuffixes = []string{
	`(?i:Jn?r\.?,? Esq\.?)`,
	`(?i:Sn?r\.?,? Esq\.?)`,
	`I{1,3},? (?i:Esq\.?)`,

	`(?i:Jn?r\.?,? M\.?D\.?)`,
	`(?i:Sn?r\.?,? M\.?D\.?)`,
	`I{1,3},? (?i:M\.?D\.?)`,

	`(?i:Sn?r\.?)`,
	`(?i:Jn?r\.?)`,

	`(?i:Esq(?:\.|uire)?)`,
	`(?i:Attorney[ -]at[ -]Law\.?)`,

	`(?i:Ph\.?D\.?)`,
	`(?i:C\.?P\.?A\.?)`,

	`XI{1,3}`,
	`X`,
	`IV`,
	`VI{1,3}`,
	`V`,
	`IX`,
	`I{1,3}\.?`,

	`(?i:D\.?M\.?D\.?)`,
	`(?i:D\.?D\.?S\.?)`,
	`(?i:M\.?D\.?)`,
}

// DefaultParticles lists surname particles, longest compound first so that
// "Van Der" is tried before "Van".
var DefaultParticles = []string{
	`De La`,
	`De Los`,
	`De Las`,
	`Von Der`,
	`Von Dem`,
	`Van De[nr]?`,
	`Dell[ae]`,
	`Des`,
	`Del`,
	`Den`,
	`Dos`,
	`Das`,
	`Mac`,
	`Mc`,
	`St\.?`,
	`Da`,
	`De`,
	`Di`,
	`Du`,
	`La`,
	`Le`,
	`Lo`,
	`Von`,
	`Van`,
}

// Template is one positional shape of a name. Lead holds the pattern of
// the tokens before the surname; First and Middle are capture group
// indexes into Lead (Middle groups are joined with a space).
type Template struct {
	ID     int    `yaml:"id"`
	Label  string `yaml:"label"`
	Lead   string `yaml:"lead"`
	First  int    `yaml:"first"`
	Middle []int  `yaml:"middle"`
}

// DefaultTemplates are the ten positional templates in priority order.
// The most token-constrained shapes come first.
var DefaultTemplates = []Template{
	{ID: 1, Label: "R Nagle", Lead: initialPat, First: 1},
	{ID: 2, Label: "R M Nagle", Lead: initialPat + ` ` + initialPat, First: 1, Middle: []int{2}},
	{ID: 3, Label: "R.M. Nagle", Lead: `([A-Za-z])\.([A-Za-z])\.`, First: 1, Middle: []int{2}},
	{ID: 4, Label: "R M M Nagle", Lead: initialPat + ` ` + initialPat + ` ` + initialPat, First: 1, Middle: []int{2, 3}},
	{ID: 5, Label: "R Michael Nagle", Lead: initialPat + ` ` + tokenPat, First: 1, Middle: []int{2}},
	{ID: 6, Label: "Ryan M Nagle", Lead: tokenPat + ` ` + initialPat, First: 1, Middle: []int{2}},
	{ID: 7, Label: "Ryan M M Nagle", Lead: tokenPat + ` ` + initialPat + ` ` + initialPat, First: 1, Middle: []int{2, 3}},
	{ID: 8, Label: "Ryan M.M. Nagle", Lead: tokenPat + ` ([A-Za-z]\.[A-Za-z]\.)`, First: 1, Middle: []int{2}},
	{ID: 9, Label: "Ryan Nagle", Lead: tokenPat, First: 1},
	{ID: 10, Label: "Ryan Michael Nagle", Lead: tokenPat + ` ` + tokenPat, First: 1, Middle: []int{2}},
}

// SurnameMode selects how the surname slot of every template is built.
type SurnameMode int

const (
	// SurnameSingle expects one core surname token after an optional particle.
	SurnameSingle SurnameMode = iota
	// SurnameMulti lets the core surname span several space-separated words.
	SurnameMulti
	// SurnameNone elides the surname slot entirely.
	SurnameNone

	surnameModes
)

// CatalogSpec is the uncompiled form of a Catalog.
type CatalogSpec struct {
	Titles    []string   `yaml:"titles"`
	Suffixes  []string   `yaml:"suffixes"`
	Particles []string   `yaml:"particles"`
	Templates []Template `yaml:"templates"`
}

// DefaultSpec returns a copy of the built-in catalog definition.
func DefaultSpec() CatalogSpec {
	templates := make([]Template, len(DefaultTemplates))
	copy(templates, DefaultTemplates)
	return CatalogSpec{
		Titles:    append([]string(nil), DefaultTitles...),
		Suffixes:  append([]string(nil), DefaultSuffixes...),
		Particles: append([]string(nil), DefaultParticles...),
		Templates: templates,
	}
}

type compiledTemplate struct {
	Template
	// res is indexed by SurnameMode.
	res [surnameModes]*regexp.Regexp
}

// Catalog holds the compiled, ordered pattern lists. It is immutable once
// built and safe for concurrent use.
type Catalog struct {
	titles    []*regexp.Regexp
	suffixes  []*regexp.Regexp
	templates []compiledTemplate
}

var defaultCatalog = mustCatalog(DefaultSpec())

// DefaultCatalog returns the shared built-in catalog.
func DefaultCatalog() *Catalog {
	return defaultCatalog
}

func mustCatalog(spec CatalogSpec) *Catalog {
	c, err := NewCatalog(spec)
	if err != nil {
		panic(err)
	}
	return c
}

// NewCatalog compiles spec. Titles are anchored at the start and must be
// followed by whitespace; suffixes are anchored at the end and must be
// preceded by a space or comma. Exactly ten templates are required.
func NewCatalog(spec CatalogSpec) (*Catalog, error) {
	if len(spec.Templates) != templateCount {
		return nil, eris.Errorf("nameparse: catalog needs %d templates, got %d", templateCount, len(spec.Templates))
	}

	c := &Catalog{
		titles:    make([]*regexp.Regexp, 0, len(spec.Titles)),
		suffixes:  make([]*regexp.Regexp, 0, len(spec.Suffixes)),
		templates: make([]compiledTemplate, 0, len(spec.Templates)),
	}

	for _, t := range spec.Titles {
		re, err := regexp.Compile(`(?i)^(` + t + `)\s+`)
		if err != nil {
			return nil, eris.Wrapf(err, "nameparse: compile title %q", t)
		}
		c.titles = append(c.titles, re)
	}

	for _, s := range spec.Suffixes {
		re, err := regexp.Compile(`[\s,]+(` + s + `)$`)
		if err != nil {
			return nil, eris.Wrapf(err, "nameparse: compile suffix %q", s)
		}
		c.suffixes = append(c.suffixes, re)
	}

	particles := strings.Join(spec.Particles, "|")
	slots := [surnameModes]string{
		SurnameSingle: surnamePattern(particles, `[`+nameChars+`]+`),
		SurnameMulti:  surnamePattern(particles, `[`+nameChars+` ]+`),
	}

	for i, t := range spec.Templates {
		if t.ID == 0 {
			t.ID = i + 1
		}
		ct := compiledTemplate{Template: t}
		for mode := SurnameMode(0); mode < surnameModes; mode++ {
			expr := `(?i)^` + t.Lead + `$`
			if mode != SurnameNone {
				expr = `(?i)^` + t.Lead + ` ` + slots[mode] + `$`
			}
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, eris.Wrapf(err, "nameparse: compile template %d", t.ID)
			}
			ct.res[mode] = re
		}
		if err := checkGroups(ct); err != nil {
			return nil, err
		}
		c.templates = append(c.templates, ct)
	}

	return c, nil
}

// surnamePattern builds the surname slot. It has exactly one capturing
// group, so the surname is always the last submatch of a template.
func surnamePattern(particles, core string) string {
	if particles == "" {
		return `((?:;.+)|(?:` + core + `))`
	}
	return `((?:;.+)|(?:(?:` + particles + `) )?(?:` + core + `))`
}

func checkGroups(ct compiledTemplate) error {
	lead := ct.res[SurnameNone].NumSubexp()
	if ct.First < 1 || ct.First > lead {
		return eris.Errorf("nameparse: template %d: first group %d out of range", ct.ID, ct.First)
	}
	for _, m := range ct.Middle {
		if m < 1 || m > lead {
			return eris.Errorf("nameparse: template %d: middle group %d out of range", ct.ID, m)
		}
	}
	if ct.res[SurnameSingle].NumSubexp() != lead+1 {
		return eris.Errorf("nameparse: template %d: particles must not add capture groups", ct.ID)
	}
	return nil
}
