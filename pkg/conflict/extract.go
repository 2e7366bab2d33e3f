// Package conflict detects contradicting memory notes within a user's store.
// Detection works on a read-only snapshot; the caller applies the resulting
// hint to both notes as one explicit mutation step.
package conflict

import (
	"regexp"
	"strings"

	"github.com/stoatworks/memorank/pkg/sanitize"
)

// Claim is a best-effort (subject, value) reading of a note. When no pattern
// matches, Subject is empty and Value carries the whole normalized text.
type Claim struct {
	Subject string
	Value   string
}

// Ordered extraction grammar. The favorite form runs before the generic
// "my X is Y" form, otherwise it could never match.
var (
	favoriteRe = regexp.MustCompile(`^my favorite ([a-z0-9_ ]+?) (?:is|are) (.+)$`)
	myRe       = regexp.MustCompile(`^my ([a-z0-9_ ]+?) (?:is|are|was|were) (.+)$`)
	preferRe   = regexp.MustCompile(`^i prefer (.+)$`)

	// Command-style lead-ins that wrap the actual claim.
	leadInRe = regexp.MustCompile(`^(?:please |remember that |remember |note that |save this:? |don't forget that |don't forget )+`)
)

// ExtractClaim parses normalized text with the ordered grammar. Leading
// command phrases ("remember that ...") are stripped first. It is a
// heuristic, not a parser: text that fits none of the forms yields an empty
// subject.
func ExtractClaim(text string) Claim {
	norm := sanitize.NormalizeText(text)
	norm = leadInRe.ReplaceAllString(norm, "")

	if m := favoriteRe.FindStringSubmatch(norm); m != nil {
		return Claim{
			Subject: "favorite_" + subjectToken(m[1]),
			Value:   strings.TrimSpace(m[2]),
		}
	}
	if m := myRe.FindStringSubmatch(norm); m != nil {
		return Claim{
			Subject: subjectToken(m[1]),
			Value:   strings.TrimSpace(m[2]),
		}
	}
	if m := preferRe.FindStringSubmatch(norm); m != nil {
		return Claim{
			Subject: "preference",
			Value:   strings.TrimSpace(m[1]),
		}
	}

	return Claim{Value: norm}
}

func subjectToken(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
}
