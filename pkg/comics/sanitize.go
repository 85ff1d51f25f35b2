package comics

import "strings"

const maxQueryLength = 100

const likeEscape = "!"

var likeReplacer = strings.NewReplacer(
	likeEscape, likeEscape+likeEscape,
	"%", likeEscape+"%",
	"_", likeEscape+"_",
)

// sanitizeSearchQuery trims the input and caps its length.
func sanitizeSearchQuery(input string) string {
	input = strings.TrimSpace(input)
	if len(input) > maxQueryLength {
		input = input[:maxQueryLength]
	}
	return input
}

// escapeLike escapes the LIKE wildcards so they match literally. The query
// must declare ESCAPE '!'.
func escapeLike(input string) string {
	return likeReplacer.Replace(input)
}
