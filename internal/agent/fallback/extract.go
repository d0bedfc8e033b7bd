package fallback

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/indigobot/server/internal/agent/graph/prompts"
	"github.com/indigobot/server/internal/agent/model"
	logx "github.com/indigobot/server/pkg/logger"
)

// NoneToken is what the extraction prompt asks the model to reply when no
// place can be identified.
const NoneToken = "NONE"

const localitySuffix = " Portland"

var localityRe = regexp.MustCompile(`(?i)\b(portland|oregon|pdx)\b`)

// Strategy proposes a place name for a question and the answer that failed it.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, input, answer string) (string, bool)
}

// Extractor tries its strategies in order; the first proposal wins.
type Extractor struct {
	strategies []Strategy
}

func NewExtractor(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// DefaultExtractor is keyword rules, then the LLM, then regex, then the
// last-words heuristic.
func DefaultExtractor(llm model.Completer) *Extractor {
	return NewExtractor(
		KeywordRule{},
		LLMExtraction{LLM: llm},
		RegexFallback{},
		HeuristicFallback{},
	)
}

// Extract returns the disambiguated place name and the name of the strategy
// that produced it.
func (e *Extractor) Extract(ctx context.Context, input, answer string) (name, strategy string, ok bool) {
	for _, s := range e.strategies {
		candidate, found := s.Extract(ctx, input, answer)
		candidate = strings.TrimSpace(candidate)
		if !found || candidate == "" {
			continue
		}
		logx.Debug().Str("strategy", s.Name()).Str("place_name", candidate).Msg("place name extracted")
		return WithLocality(candidate), s.Name(), true
	}
	return "", "", false
}

// WithLocality appends " Portland" unless name already names the locality.
func WithLocality(name string) string {
	if localityRe.MatchString(name) {
		return name
	}
	return name + localitySuffix
}

// ================ KeywordRule ================

type keywordRule struct {
	match func(lower string) (string, bool)
}

var libraryBranches = []struct{ key, name string }{
	{"central", "Central"},
	{"belmont", "Belmont"},
	{"hollywood", "Hollywood"},
	{"st johns", "St. Johns"},
	{"st. johns", "St. Johns"},
	{"midland", "Midland"},
	{"gresham", "Gresham"},
	{"kenton", "Kenton"},
	{"albina", "Albina"},
	{"sellwood", "Sellwood-Moreland"},
	{"woodstock", "Woodstock"},
	{"capitol hill", "Capitol Hill"},
	{"gregory heights", "Gregory Heights"},
	{"hillsdale", "Hillsdale"},
	{"holgate", "Holgate"},
	{"north portland", "North Portland"},
	{"northwest", "Northwest"},
	{"rockwood", "Rockwood"},
	{"troutdale", "Troutdale"},
	{"fairview", "Fairview-Columbia"},
}

var keywordRules = []keywordRule{
	{match: func(s string) (string, bool) {
		if strings.Contains(s, "trimet") &&
			(strings.Contains(s, "ticket office") || strings.Contains(s, "ticket") || strings.Contains(s, "customer service")) {
			return "TriMet Ticket Office Pioneer Courthouse Square", true
		}
		return "", false
	}},
	{match: func(s string) (string, bool) {
		if !strings.Contains(s, "library") {
			return "", false
		}
		for _, b := range libraryBranches {
			if strings.Contains(s, b.key) {
				return "Multnomah County " + b.name + " Library", true
			}
		}
		return "", false
	}},
	{match: func(s string) (string, bool) {
		cafe := strings.Contains(s, "cafe") || strings.Contains(s, "café") || strings.Contains(s, "coffee")
		psu := strings.Contains(s, "psu") || strings.Contains(s, "portland state")
		if cafe && psu {
			return "Food for Thought Cafe Portland State University", true
		}
		return "", false
	}},
}

// KeywordRule maps a short allow-list of venues to canonical names. It never
// calls out.
type KeywordRule struct{}

func (KeywordRule) Name() string { return "keyword" }

func (KeywordRule) Extract(_ context.Context, input, _ string) (string, bool) {
	lower := strings.ToLower(input)
	for _, r := range keywordRules {
		if name, ok := r.match(lower); ok {
			return name, true
		}
	}
	return "", false
}

// ================ LLMExtraction ================

// LLMExtraction asks the model for the place name. NONE, an empty reply or a
// model error fall through to the next strategy.
type LLMExtraction struct {
	LLM model.Completer
}

func (LLMExtraction) Name() string { return "llm" }

func (l LLMExtraction) Extract(ctx context.Context, input, answer string) (string, bool) {
	if l.LLM == nil {
		return "", false
	}
	p, err := prompts.RenderExtract(ctx, input, answer)
	if err != nil {
		logx.Warn().Err(err).Msg("render extraction prompt")
		return "", false
	}
	out, err := l.LLM.Complete(ctx, p)
	if err != nil {
		logx.Warn().Err(err).Msg("LLM place extraction failed, falling back")
		return "", false
	}
	out = strings.Trim(strings.TrimSpace(out), "\"'`.")
	if out == "" || strings.EqualFold(out, NoneToken) {
		return "", false
	}
	return out, true
}

// ================ RegexFallback ================

var extractionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:where\s+is|address\s+of|location\s+of|directions\s+to)\s+(?:the\s+)?([^?.,!]+)`),
	regexp.MustCompile(`(?i)\b(?:hours|schedule)\s+(?:for|of|at)\s+(?:the\s+)?([^?.,!]+)`),
	regexp.MustCompile(`(?i)\b((?:[\w'&-]+\s+){0,3}[\w'&-]+)\s+(?:hours|address|phone|contact|website)\b`),
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "is": {}, "are": {}, "was": {}, "what": {}, "where": {},
	"when": {}, "how": {}, "who": {}, "which": {}, "me": {}, "tell": {}, "about": {},
	"for": {}, "of": {}, "to": {}, "in": {}, "on": {}, "at": {}, "and": {}, "or": {},
	"please": {}, "can": {}, "could": {}, "would": {}, "you": {}, "i": {}, "do": {},
	"does": {}, "there": {}, "any": {}, "some": {}, "find": {}, "get": {}, "need": {},
	"open": {}, "today": {}, "now": {}, "near": {}, "nearby": {}, "place": {}, "this": {},
	"that": {}, "with": {}, "from": {}, "their": {}, "your": {}, "my": {}, "know": {},
	"hours": {}, "address": {}, "location": {}, "directions": {}, "schedule": {},
	"phone": {}, "number": {}, "contact": {}, "website": {}, "information": {}, "info": {},
	"located": {}, "closest": {}, "nearest": {}, "where's": {}, "what's": {}, "they": {},
	"it": {}, "be": {}, "will": {}, "should": {}, "like": {}, "want": {}, "looking": {},
}

func isStopWord(w string) bool {
	_, ok := stopWords[strings.ToLower(w)]
	return ok
}

// RegexFallback hunts the raw input for "where is X", "hours for X" and
// "X hours" phrasings.
type RegexFallback struct{}

func (RegexFallback) Name() string { return "regex" }

func (RegexFallback) Extract(_ context.Context, input, _ string) (string, bool) {
	for _, re := range extractionPatterns {
		m := re.FindStringSubmatch(input)
		if len(m) < 2 {
			continue
		}
		candidate := trimStopWords(m[1])
		if len(candidate) > 3 && !isStopWord(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// trimStopWords drops leading and trailing stop words from a captured phrase.
func trimStopWords(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for len(words) > 0 && isStopWord(words[0]) {
		words = words[1:]
	}
	for len(words) > 0 && isStopWord(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// ================ HeuristicFallback ================

// HeuristicFallback takes the last two content words (longer than four
// characters, not stop words) of the input.
type HeuristicFallback struct{}

func (HeuristicFallback) Name() string { return "heuristic" }

func (HeuristicFallback) Extract(_ context.Context, input, _ string) (string, bool) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '-'
	})
	var content []string
	for _, w := range fields {
		if len([]rune(w)) > 4 && !isStopWord(w) {
			content = append(content, w)
		}
	}
	if len(content) == 0 {
		return "", false
	}
	if len(content) > 2 {
		content = content[len(content)-2:]
	}
	return strings.Join(content, " "), true
}
