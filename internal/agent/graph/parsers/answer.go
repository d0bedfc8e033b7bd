package parsers

import (
	"fmt"
	"strings"

	logx "github.com/indigobot/server/pkg/logger"
)

// The answer model may close its reply with a single sufficiency record:
//
//	##(sufficiency<||>no)<|COMPLETE|>
const (
	recDelim = "##"
	tupDelim = "<||>"
	endDelim = "<|COMPLETE|>"

	sufficiencyTag = "sufficiency"
)

const maxContentLen = 64 * 1024

type rawTuple struct {
	Type  string
	Parts []string
}

func parseRawTuple(s string) (*rawTuple, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return nil, fmt.Errorf("invalid tuple parens")
	}
	parts := strings.SplitN(s[1:len(s)-1], tupDelim, 3)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid tuple parts")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return &rawTuple{Type: strings.ToLower(parts[0]), Parts: parts}, nil
}

func parseFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid flag %q", s)
}

// ParseAnswer splits a model reply into the user-facing answer and the
// optional sufficiency signal. Replies without a record come back unchanged
// with a nil signal; malformed records are stripped and ignored.
func ParseAnswer(content string) (answer string, sufficient *bool) {
	if len(content) > maxContentLen {
		logx.Warn().Str("component", "answer_parser").Int("orig_len", len(content)).
			Msg("answer exceeds size limit, skipping signal parse")
		return strings.TrimSpace(content), nil
	}

	body := content
	if idx := strings.LastIndex(body, endDelim); idx >= 0 {
		body = body[:idx]
	}

	idx := strings.LastIndex(body, recDelim+"(")
	if idx < 0 {
		return strings.TrimSpace(strings.ReplaceAll(content, endDelim, "")), nil
	}

	answer = strings.TrimSpace(body[:idx])
	rt, err := parseRawTuple(body[idx+len(recDelim):])
	if err != nil || rt.Type != sufficiencyTag {
		logx.Debug().Str("component", "answer_parser").Msg("ignoring malformed sufficiency record")
		return answer, nil
	}
	v, err := parseFlag(rt.Parts[1])
	if err != nil {
		logx.Debug().Str("component", "answer_parser").Err(err).Msg("ignoring sufficiency flag")
		return answer, nil
	}
	return answer, &v
}
