package llm

import (
	"context"
	"errors"
	"testing"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indigobot/server/internal/agent/model"
)

type fakeChatModel struct {
	reply *schema.Message
	err   error
	got   [][]*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, in []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.got = append(f.got, in)
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

type scriptedCompleter struct {
	errs  []error
	calls int
}

func (s *scriptedCompleter) Complete(_ context.Context, _ string) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return "ok", nil
}

func TestChatCompleter_Complete(t *testing.T) {
	reply := schema.AssistantMessage("  Rose Haven  ", nil)
	reply.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 100, CompletionTokens: 10, TotalTokens: 110}}
	chat := &fakeChatModel{reply: reply}

	out, err := NewChatCompleter(chat, "gemini-2.5-flash").Complete(context.Background(), "extract")
	require.NoError(t, err)
	assert.Equal(t, "Rose Haven", out)

	require.Len(t, chat.got, 1)
	require.Len(t, chat.got[0], 1)
	assert.Equal(t, schema.User, chat.got[0][0].Role)
	assert.Equal(t, "extract", chat.got[0][0].Content)
	assert.Contains(t, reply.Extra, "usage_cost")
}

func TestChatCompleter_Error(t *testing.T) {
	chat := &fakeChatModel{err: errors.New("quota")}

	_, err := NewChatCompleter(chat, "gemini-2.5-flash").Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota")
}

func TestLogUsage_NoMeta(t *testing.T) {
	assert.Zero(t, LogUsage("gemini-2.5-flash", "test", schema.AssistantMessage("hi", nil)))
	assert.Zero(t, LogUsage("gemini-2.5-flash", "test", nil))
}

func TestResilient_DefaultsDoNotRetry(t *testing.T) {
	next := &scriptedCompleter{errs: []error{errors.New("503 unavailable")}}
	r, err := NewResilient(next, model.RetryConfig{})
	require.NoError(t, err)

	_, err = r.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestResilient_RetriesTransientErrors(t *testing.T) {
	next := &scriptedCompleter{errs: []error{errors.New("429 too many requests"), errors.New("model overloaded")}}
	r, err := NewResilient(next, model.RetryConfig{MaxRetries: 2, BaseDelay: "1ms"})
	require.NoError(t, err)

	out, err := r.Complete(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, next.calls)
}

func TestResilient_DoesNotRetryPermanentErrors(t *testing.T) {
	next := &scriptedCompleter{errs: []error{errors.New("invalid api key")}}
	r, err := NewResilient(next, model.RetryConfig{MaxRetries: 3, BaseDelay: "1ms"})
	require.NoError(t, err)

	_, err = r.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.Equal(t, 1, next.calls)
}

func TestResilient_StopsOnCancel(t *testing.T) {
	next := &scriptedCompleter{errs: []error{errors.New("503"), errors.New("503"), errors.New("503")}}
	r, err := NewResilient(next, model.RetryConfig{MaxRetries: 2, BaseDelay: "1h"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Complete(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, next.calls)
}

func TestNewResilient_BadDuration(t *testing.T) {
	_, err := NewResilient(&scriptedCompleter{}, model.RetryConfig{BaseDelay: "soon"})
	assert.Error(t, err)
}
