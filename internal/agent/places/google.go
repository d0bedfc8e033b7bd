package places

import (
	"context"
	"fmt"
	"time"

	"googlemaps.github.io/maps"

	"github.com/indigobot/server/internal/agent/model"
	errx "github.com/indigobot/server/internal/core/error"
	logx "github.com/indigobot/server/pkg/logger"
)

// GoogleSource queries Google Places: a text search for the name, then place
// details for the best match.
type GoogleSource struct {
	client     *maps.Client
	language   string
	region     string
	maxRetries int
	baseDelay  time.Duration
}

func NewGoogleSource(cfg model.PlacesConfig) (*GoogleSource, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GPLACES_API_KEY is not set")
	}
	client, err := maps.NewClient(maps.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create places client: %w", err)
	}
	return &GoogleSource{
		client:     client,
		language:   cfg.Language,
		region:     cfg.Region,
		maxRetries: cfg.MaxRetries,
		baseDelay:  500 * time.Millisecond,
	}, nil
}

func (g *GoogleSource) Search(ctx context.Context, placeName string) ([]model.PlaceRecord, error) {
	var (
		resp maps.PlacesSearchResponse
		err  error
	)
	err = g.withRetry(ctx, func() error {
		resp, err = g.client.TextSearch(ctx, &maps.TextSearchRequest{
			Query:    placeName,
			Language: g.language,
			Region:   g.region,
		})
		return err
	})
	if err != nil {
		return nil, errx.WrapCollaborator("places text search", err)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	best := resp.Results[0]
	var details maps.PlaceDetailsResult
	err = g.withRetry(ctx, func() error {
		details, err = g.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
			PlaceID:  best.PlaceID,
			Language: g.language,
			Region:   g.region,
		})
		return err
	})
	if err != nil {
		logx.Warn().Err(err).Str("place_id", best.PlaceID).Msg("place details failed, using search result")
		return []model.PlaceRecord{fromSearchResult(best)}, nil
	}

	return []model.PlaceRecord{fromDetails(details)}, nil
}

// withRetry retries fn up to maxRetries extra times with exponential backoff.
func (g *GoogleSource) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == g.maxRetries {
			break
		}
		select {
		case <-time.After(g.baseDelay * time.Duration(1<<attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func fromSearchResult(r maps.PlacesSearchResult) model.PlaceRecord {
	return model.PlaceRecord{
		Name:             r.Name,
		FormattedAddress: r.FormattedAddress,
		OpeningHours:     convertHours(r.OpeningHours),
	}
}

func fromDetails(d maps.PlaceDetailsResult) model.PlaceRecord {
	return model.PlaceRecord{
		Name:                 d.Name,
		FormattedAddress:     d.FormattedAddress,
		FormattedPhoneNumber: d.FormattedPhoneNumber,
		Website:              d.Website,
		OpeningHours:         convertHours(d.OpeningHours),
	}
}

func convertHours(h *maps.OpeningHours) *model.OpeningHours {
	if h == nil {
		return nil
	}
	out := &model.OpeningHours{
		OpenNow:     h.OpenNow,
		WeekdayText: append([]string(nil), h.WeekdayText...),
	}
	for _, p := range h.Periods {
		out.Periods = append(out.Periods, model.Period{
			Open:  convertDayTime(p.Open),
			Close: convertDayTime(p.Close),
		})
	}
	return out
}

// convertDayTime remaps the Sunday-based weekday; an empty time means the
// side is absent (24h places have no close).
func convertDayTime(oc maps.OpeningHoursOpenClose) *model.DayTime {
	if oc.Time == "" {
		return nil
	}
	return &model.DayTime{Day: Weekday(oc.Day), Time: oc.Time}
}
