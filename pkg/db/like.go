package db

import "strings"

// LikeEscape is appended to LIKE clauses built with ContainsPattern.
const LikeEscape = " ESCAPE '!'"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// ContainsPattern matches value anywhere in a column, with LIKE wildcards in
// value taken literally.
func ContainsPattern(value string) string {
	return "%" + likeReplacer.Replace(value) + "%"
}
