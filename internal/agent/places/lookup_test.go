package places

import (
	"context"
	"errors"
	"testing"

	"github.com/indigobot/server/internal/agent/model"
	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	records []model.PlaceRecord
	err     error
	calls   []string
}

func (f *fakeSource) Search(_ context.Context, name string) ([]model.PlaceRecord, error) {
	f.calls = append(f.calls, name)
	return f.records, f.err
}

func newTestLookup(src Source) *Lookup {
	return NewLookup(src, NewFormatter(FixedClock(monday(10, 30))))
}

func TestLookup_FormatsFirstRecord(t *testing.T) {
	src := &fakeSource{records: []model.PlaceRecord{
		{Name: "Food for Thought Cafe", FormattedAddress: "1825 SW Broadway"},
		{Name: "Other", FormattedAddress: "elsewhere"},
	}}

	info, ok := newTestLookup(src).Lookup(context.Background(), "  Food for Thought Cafe Portland ")

	assert.True(t, ok)
	assert.Contains(t, info, "Name: Food for Thought Cafe")
	assert.NotContains(t, info, "Other")
	assert.Equal(t, []string{"Food for Thought Cafe Portland"}, src.calls)
	assert.False(t, IsFailure(info))
}

func TestLookup_NoResults(t *testing.T) {
	info, ok := newTestLookup(&fakeSource{}).Lookup(context.Background(), "Nowhere")

	assert.False(t, ok)
	assert.Equal(t, NoResultsText, info)
	assert.True(t, IsFailure(info))
}

func TestLookup_SourceError(t *testing.T) {
	info, ok := newTestLookup(&fakeSource{err: errors.New("quota exceeded")}).Lookup(context.Background(), "Library")

	assert.False(t, ok)
	assert.Equal(t, "Error: quota exceeded", info)
	assert.True(t, IsFailure(info))
}

func TestLookup_InvalidName(t *testing.T) {
	src := &fakeSource{}

	info, ok := newTestLookup(src).Lookup(context.Background(), "   ")

	assert.False(t, ok)
	assert.Equal(t, InvalidNameText, info)
	assert.Empty(t, src.calls)
}

func TestIsFailure(t *testing.T) {
	assert.True(t, IsFailure(""))
	assert.True(t, IsFailure("Error: boom"))
	assert.True(t, IsFailure("No results found."))
	assert.False(t, IsFailure("Name: Library\nAddress: 801 SW 10th Ave"))
}
