package nameparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean_Empty(t *testing.T) {
	assert.Equal(t, "", Clean(""))
	assert.Equal(t, "", Clean("   "))
	assert.Equal(t, "", Clean("@@@"))
}

func TestClean_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "Dr. Ryan M. Nagle Jr.", Clean("  Dr.   Ryan  M. Nagle Jr. "))
	assert.Equal(t, "Ryan Nagle", Clean("Ryan\tNagle\n"))
}

func TestClean_ReplacesIllegalCharacters(t *testing.T) {
	assert.Equal(t, "Ryan Bob Nagle", Clean("Ryan (Bob) Nagle!"))
	assert.Equal(t, "Ryan Nagle", Clean("Ryan;Nagle"))
	assert.Equal(t, "Jos", Clean("José"))
}

func TestClean_KeepsAllowedPunctuation(t *testing.T) {
	assert.Equal(t, "O'Brien-Smith, Jr.", Clean("O'Brien-Smith, Jr."))
	assert.Equal(t, "Mr & Mrs Smith", Clean("Mr & Mrs Smith"))
	assert.Equal(t, "M/s Smith 2", Clean("M/s Smith 2"))
}

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"  Dr.   Ryan  M. Nagle Jr. ",
		"Ryan (Bob) Nagle!",
		"José Núñez\t\n",
		"Smith, John;;Q",
		" Ryan Nagle",
	}
	for _, in := range inputs {
		once := Clean(in)
		assert.Equal(t, once, Clean(once), "input %q", in)
	}
}

func TestFoldDiacritics(t *testing.T) {
	assert.Equal(t, "Jose Nunez", FoldDiacritics("José Núñez"))
	assert.Equal(t, "Ryan Nagle", FoldDiacritics("Ryan Nagle"))
}
