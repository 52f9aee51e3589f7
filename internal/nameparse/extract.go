package nameparse

import "strings"

// Title returns the leading honorific of name, or "" when there is none.
func (c *Catalog) Title(name string) string {
	title, _ := c.matchTitle(name)
	return title
}

// Suffix returns the trailing generational or credential suffix of name,
// or "" when there is none.
func (c *Catalog) Suffix(name string) string {
	suffix, _ := c.matchSuffix(name)
	return suffix
}

// StripTitleAndSuffix removes the title with its trailing whitespace and
// the suffix with its leading comma or space, then re-normalizes spacing.
func (c *Catalog) StripTitleAndSuffix(name string) string {
	_, _, rest := c.split(name)
	return rest
}

// split extracts the title from name, then the suffix from what remains,
// and returns both along with the bare personal name.
func (c *Catalog) split(name string) (title, suffix, rest string) {
	rest = name
	if t, end := c.matchTitle(rest); t != "" {
		title = t
		rest = rest[end:]
	}
	if s, start := c.matchSuffix(rest); s != "" {
		suffix = s
		rest = rest[:start]
	}
	rest = strings.TrimRight(collapse(rest), " ,")
	return title, suffix, rest
}

// matchTitle returns the trimmed title and the offset where the rest of
// the name begins.
func (c *Catalog) matchTitle(name string) (string, int) {
	for _, re := range c.titles {
		loc := re.FindStringSubmatchIndex(name)
		if loc == nil {
			continue
		}
		return strings.TrimSpace(name[loc[2]:loc[3]]), loc[1]
	}
	return "", 0
}

// matchSuffix returns the trimmed suffix and the offset of the separator
// that precedes it.
func (c *Catalog) matchSuffix(name string) (string, int) {
	for _, re := range c.suffixes {
		loc := re.FindStringSubmatchIndex(name)
		if loc == nil {
			continue
		}
		return strings.TrimSpace(name[loc[2]:loc[3]]), loc[0]
	}
	return "", len(name)
}
