package driver

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/resilience"
)

type fakeDriver struct {
	loadedURL string
	loadErr   error
	loading   []bool
	loadingAt int
	result    any
	evalErr   error
}

func (f *fakeDriver) Load(ctx context.Context, url string) error {
	f.loadedURL = url
	return f.loadErr
}

func (f *fakeDriver) IsLoading(ctx context.Context) (bool, error) {
	if f.loadingAt < len(f.loading) {
		v := f.loading[f.loadingAt]
		f.loadingAt++
		return v, nil
	}
	return false, nil
}

func (f *fakeDriver) Evaluate(ctx context.Context, script string) (any, error) {
	return f.result, f.evalErr
}

func TestDecodeRecords(t *testing.T) {
	result := []any{
		map[string]any{"name": "Jane Doe", "profileUrl": "https://linkedin.com/in/janedoe"},
		map[string]any{"name": "Bob", "count": float64(3)},
	}
	records, err := DecodeRecords(result)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Jane Doe", records[0].Field("name"))
	assert.Equal(t, "https://linkedin.com/in/janedoe", records[0].Field("profileUrl"))

	// Non-string values are dropped, not stringified.
	assert.Equal(t, "", records[1].Field("count"))
	assert.Equal(t, "Bob", records[1].Field("name"))
}

func TestDecodeRecords_Nil(t *testing.T) {
	records, err := DecodeRecords(nil)
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestDecodeRecords_NotArray(t *testing.T) {
	_, err := DecodeRecords("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected record array")
}

func TestDecodeRecords_NotObject(t *testing.T) {
	_, err := DecodeRecords([]any{"nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected record object")
}

func TestField_Absent(t *testing.T) {
	rec := Record{"name": "Jane"}
	assert.Equal(t, "", rec.Field("headline"))
}

func TestNavigateAndWait(t *testing.T) {
	d := &fakeDriver{loading: []bool{true, true, false}}
	err := NavigateAndWait(context.Background(), d, "https://example.com/page", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", d.loadedURL)
	assert.Equal(t, 3, d.loadingAt)
}

func TestNavigateAndWait_LoadError(t *testing.T) {
	d := &fakeDriver{loadErr: eris.New("connection refused")}
	err := NavigateAndWait(context.Background(), d, "https://example.com", time.Second)
	require.Error(t, err)
	assert.Equal(t, resilience.CategoryAutomation, resilience.CategoryOf(err))
}

func TestEvaluateBool(t *testing.T) {
	d := &fakeDriver{result: true}
	got, err := EvaluateBool(context.Background(), d, "true")
	require.NoError(t, err)
	assert.True(t, got)
}

func TestEvaluateBool_WrongType(t *testing.T) {
	d := &fakeDriver{result: "yes"}
	_, err := EvaluateBool(context.Background(), d, "x")
	require.Error(t, err)
	assert.Equal(t, resilience.CategoryAutomation, resilience.CategoryOf(err))
}

func TestEvaluateString(t *testing.T) {
	d := &fakeDriver{result: "sent"}
	got, err := EvaluateString(context.Background(), d, "x")
	require.NoError(t, err)
	assert.Equal(t, "sent", got)
}

func TestEvaluateString_EvalError(t *testing.T) {
	d := &fakeDriver{evalErr: eris.New("target crashed")}
	_, err := EvaluateString(context.Background(), d, "x")
	require.Error(t, err)
	assert.Equal(t, resilience.CategoryAutomation, resilience.CategoryOf(err))
}
