package nodes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/indigobot/server/internal/agent/model"
)

func TestDecide(t *testing.T) {
	yes, no := true, false
	tests := []struct {
		name       string
		answer     string
		sufficient *bool
		want       model.Route
	}{
		{"empty answer", "", nil, model.RouteDone},
		{"blank answer ignores flag", "  ", &no, model.RouteDone},
		{"sufficient text", "The pantry opens at 9 AM.", nil, model.RouteDone},
		{"insufficient text", "I don't know the hours for the library.", nil, model.RoutePlacesLookup},
		{"pattern overrides a yes record", "I don't know the hours for the library.", &yes, model.RoutePlacesLookup},
		{"yes record and no pattern", "The pantry opens at 9 AM.", &yes, model.RouteDone},
		{"no record without pattern", "The library is downtown.", &no, model.RoutePlacesLookup},
		{"no record with pattern", "I don't know the address.", &no, model.RoutePlacesLookup},
		{"information about other topics", "I don't have information about their intake process.", nil, model.RouteDone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.answer, tt.sufficient))
		})
	}
}

func TestAppendPlaceBlock(t *testing.T) {
	assert.Equal(t, "Place information for X:\ninfo", appendPlaceBlock("", "X", "info"))
	assert.Equal(t, "doc\n\nPlace information for X:\ninfo", appendPlaceBlock("doc", "X", "info"))
}
