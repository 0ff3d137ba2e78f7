// Package format expands quotation code templates such as
// "Q{YY}{MM}{DD}-{RAND6}".
//
// Supported placeholders: {YYYY}, {YY}, {MM}, {DD} from the issue time and
// {RANDn} for n random uppercase hexadecimal characters (1 <= n <= 32).
package format

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SuffixFunc returns n random characters.
type SuffixFunc func(n int) string

var randPattern = regexp.MustCompile(`\{RAND(\d+)\}`)

// FormatCode expands template for t. Unknown placeholders are left as-is.
func FormatCode(template string, t time.Time, suffix SuffixFunc) string {
	if suffix == nil {
		suffix = RandomSuffix
	}

	out := strings.NewReplacer(
		"{YYYY}", t.Format("2006"),
		"{YY}", t.Format("06"),
		"{MM}", t.Format("01"),
		"{DD}", t.Format("02"),
	).Replace(template)

	return randPattern.ReplaceAllStringFunc(out, func(token string) string {
		n, err := strconv.Atoi(randPattern.FindStringSubmatch(token)[1])
		if err != nil || n <= 0 || n > 32 {
			return token
		}
		return suffix(n)
	})
}

// RandomSuffix returns n uppercase hex characters taken from a random UUID.
func RandomSuffix(n int) string {
	if n <= 0 {
		return ""
	}
	if n > 32 {
		n = 32
	}
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:n])
}
