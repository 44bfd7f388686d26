package feedback

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/vitae/internal/contract"
	"github.com/kalambet/vitae/internal/engine"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixed(out string, err error) engine.Capability {
	return engine.CapabilityFunc(func(context.Context, string, *engine.Schema, ...engine.Tool) (json.RawMessage, error) {
		if out == "" {
			return nil, err
		}
		return json.RawMessage(out), err
	})
}

var req = contract.FeedbackRequest{ResumeTemplate: "<div>cv</div>", UserFeedback: "The header feels too crowded"}

func TestSummarize(t *testing.T) {
	s := New(fixed(`{"summary":" Less crowded header. ","refinedTemplate":"`+"```html\\n<div>cv</div>\\n```"+`"}`, nil), quietLogger())

	res, err := s.Summarize(context.Background(), req)
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, "Less crowded header.", res.Value.Summary)
	assert.Equal(t, "<div>cv</div>", res.Value.RefinedTemplate)
}

func TestSummarize_Failures(t *testing.T) {
	for name, out := range map[string]string{
		"no output":     "",
		"missing field": `{"summary":"x"}`,
		"empty summary": `{"summary":"  ","refinedTemplate":"<div></div>"}`,
	} {
		t.Run(name, func(t *testing.T) {
			res, err := New(fixed(out, nil), quietLogger()).Summarize(context.Background(), req)
			require.NoError(t, err)
			assert.False(t, res.OK)
			assert.Equal(t, contract.KindSummary, res.Kind)
			assert.Equal(t, FailureMessage, res.Reason)
		})
	}
}

func TestSummarize_CapabilityError(t *testing.T) {
	cause := errors.New("timeout")
	_, err := New(fixed("", cause), quietLogger()).Summarize(context.Background(), req)
	assert.ErrorIs(t, err, cause)
}
