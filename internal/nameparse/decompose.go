package nameparse

import "strings"

// Parts is the positional decomposition of a personal name.
type Parts struct {
	Parsed    bool   `json:"parsed" yaml:"parsed"`
	ParseType int    `json:"parse_type" yaml:"parse_type"`
	First     string `json:"first" yaml:"first"`
	Middle    string `json:"middle" yaml:"middle"`
	Last      string `json:"last" yaml:"last"`
}

// NameParts splits a cleaned, title- and suffix-free name into first,
// middle and last using the catalog templates in order. When noLastName is
// set the surname slot is dropped from every template.
func (c *Catalog) NameParts(name string, noLastName bool) Parts {
	mode := SurnameSingle
	if noLastName {
		mode = SurnameNone
	}
	return c.Decompose(name, mode)
}

// Decompose matches name against the ten templates with the given surname
// mode. The first full match wins; with no match Parsed is false and every
// field is empty.
func (c *Catalog) Decompose(name string, mode SurnameMode) Parts {
	if mode < 0 || mode >= surnameModes {
		mode = SurnameSingle
	}
	for _, t := range c.templates {
		m := t.res[mode].FindStringSubmatch(name)
		if m == nil {
			continue
		}

		p := Parts{
			Parsed:    true,
			ParseType: t.ID,
			First:     m[t.First],
		}

		if len(t.Middle) > 0 {
			middle := make([]string, 0, len(t.Middle))
			for _, g := range t.Middle {
				middle = append(middle, m[g])
			}
			p.Middle = strings.Join(middle, " ")
		}

		if mode != SurnameNone {
			p.Last = surname(m[len(m)-1])
		}
		return p
	}
	return Parts{}
}

// surname unwraps the ";" escape, which takes the rest of the slot verbatim.
func surname(s string) string {
	if rest, ok := strings.CutPrefix(s, ";"); ok {
		return strings.TrimSpace(rest)
	}
	return s
}
