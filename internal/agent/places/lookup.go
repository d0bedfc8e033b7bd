package places

import (
	"context"
	"fmt"
	"strings"

	"github.com/indigobot/server/internal/agent/model"
	logx "github.com/indigobot/server/pkg/logger"
)

const (
	NoResultsText       = "No results found."
	InvalidNameText     = "Error: Invalid place name provided"
	errorSentinelPrefix = "Error"
)

// Source is the places directory API.
type Source interface {
	Search(ctx context.Context, placeName string) ([]model.PlaceRecord, error)
}

// Lookup normalises Source results into a formatted record, NoResultsText or
// an "Error: ..." sentinel.
type Lookup struct {
	source    Source
	formatter *Formatter
}

func NewLookup(source Source, formatter *Formatter) *Lookup {
	return &Lookup{source: source, formatter: formatter}
}

func (l *Lookup) Lookup(ctx context.Context, placeName string) (string, bool) {
	name := strings.TrimSpace(placeName)
	if name == "" {
		return InvalidNameText, false
	}

	logx.Debug().Str("place_name", name).Msg("looking up place")
	records, err := l.source.Search(ctx, name)
	if err != nil {
		logx.Warn().Err(err).Str("place_name", name).Msg("place lookup failed")
		return fmt.Sprintf("Error: %v", err), false
	}
	if len(records) == 0 {
		return NoResultsText, false
	}

	return l.formatter.Format(records[0]), true
}

// IsFailure reports whether a lookup text is an error sentinel or the
// no-results text.
func IsFailure(info string) bool {
	info = strings.TrimSpace(info)
	return info == "" || info == NoResultsText || strings.HasPrefix(info, errorSentinelPrefix)
}

var _ model.PlaceLookup = (*Lookup)(nil)
