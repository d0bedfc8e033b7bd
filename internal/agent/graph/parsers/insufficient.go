package parsers

import "regexp"

// apostrophe matches both the ASCII and the typographic form models emit.
const apos = `['’]?`

var insufficientPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bi\s+(?:don` + apos + `t|do\s+not)\s+(?:have|know)\s+(?:the\s+)?(?:current\s+|specific\s+|exact\s+)?(?:hours|schedule|location|address)\b`),
	regexp.MustCompile(`(?i)\bi` + apos + `m\s+not\s+sure\s+(?:about\s+)?(?:the\s+)?(?:current\s+|specific\s+|exact\s+)?(?:hours|schedule|location|address)\b`),
	regexp.MustCompile(`(?i)\b(?:hours|schedule|location|address)\s+(?:are|is)\s+not\s+(?:provided|available|listed|mentioned)\b`),
	regexp.MustCompile(`(?i)\b(?:don` + apos + `t|do\s+not)\s+have\s+(?:any\s+)?information\s+(?:about|on)\s+(?:the\s+)?(?:hours|schedule|location|address)\b`),
}

// Insufficient reports whether answer admits it lacks operating details
// (hours, schedule, location, address) for the place asked about.
func Insufficient(answer string) bool {
	for _, re := range insufficientPatterns {
		if re.MatchString(answer) {
			return true
		}
	}
	return false
}
