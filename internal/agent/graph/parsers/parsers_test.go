package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsufficient(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"I don't know the hours for the library.", true},
		{"I don't know the hours for this library.", true},
		{"I don’t have current hours for Blanchet House.", true},
		{"Sorry, I do not have the specific location of that clinic.", true},
		{"I'm not sure about the hours for the food pantry.", true},
		{"I’m not sure the schedule is up to date.", true},
		{"The hours are not provided in the context.", true},
		{"The address is not listed.", true},
		{"Unfortunately I don't have any information about the hours of that shelter.", true},
		{"I DON'T KNOW THE ADDRESS.", true},
		{"The Central Library is at 801 SW 10th Ave and opens at 10 AM.", false},
		{"I don't know.", false},
		{"I don't have information about their intake process.", false},
		{"I do not know information about eligibility.", false},
		{"Rose Haven serves women and children.", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.want, Insufficient(tt.answer))
		})
	}
}

func TestParseAnswer_NoRecord(t *testing.T) {
	answer, sufficient := ParseAnswer("  The library opens at 10 AM.  ")
	assert.Equal(t, "The library opens at 10 AM.", answer)
	assert.Nil(t, sufficient)
}

func TestParseAnswer_WithRecord(t *testing.T) {
	answer, sufficient := ParseAnswer("I don't know the hours for that library.\n##(sufficiency<||>no)<|COMPLETE|>")
	assert.Equal(t, "I don't know the hours for that library.", answer)
	require.NotNil(t, sufficient)
	assert.False(t, *sufficient)

	answer, sufficient = ParseAnswer("Open 9 to 5. ##( Sufficiency <||> YES )")
	assert.Equal(t, "Open 9 to 5.", answer)
	require.NotNil(t, sufficient)
	assert.True(t, *sufficient)
}

func TestParseAnswer_Malformed(t *testing.T) {
	answer, sufficient := ParseAnswer("Some answer ##(sufficiency<||>maybe)<|COMPLETE|>")
	assert.Equal(t, "Some answer", answer)
	assert.Nil(t, sufficient)

	answer, sufficient = ParseAnswer("Some answer ##(mood<||>yes)")
	assert.Equal(t, "Some answer", answer)
	assert.Nil(t, sufficient)
}

func TestParseAnswer_KeepsMarkdownHeadings(t *testing.T) {
	answer, sufficient := ParseAnswer("## Shelters\nTransition Projects is open 24 hours.")
	assert.Equal(t, "## Shelters\nTransition Projects is open 24 hours.", answer)
	assert.Nil(t, sufficient)
}
