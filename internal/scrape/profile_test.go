package scrape

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/resilience"
)

type fakeDriver struct {
	result any
	err    error
}

func (f *fakeDriver) Load(ctx context.Context, url string) error  { return nil }
func (f *fakeDriver) IsLoading(ctx context.Context) (bool, error) { return false, nil }
func (f *fakeDriver) Evaluate(ctx context.Context, s string) (any, error) {
	return f.result, f.err
}

func TestProfile(t *testing.T) {
	d := &fakeDriver{result: []any{map[string]any{
		"headline":         "VP of Engineering at Acme",
		"location":         "Austin, Texas",
		"about":            "Building things.",
		"currentRole":      "VP of Engineering",
		"currentCompany":   "Acme Corp",
		"education":        "UT Austin",
		"connectionDegree": "2nd",
		"followerCount":    "1,234 followers",
	}}}

	p, err := Profile(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "VP of Engineering at Acme", p.Headline)
	assert.Equal(t, "Austin, Texas", p.Location)
	assert.Equal(t, "Acme Corp", p.CurrentCompany)
	assert.Equal(t, 2, p.ConnectionDegree)
	assert.Equal(t, 1234, p.FollowerCount)
}

func TestProfile_EmptyFields(t *testing.T) {
	d := &fakeDriver{result: []any{map[string]any{}}}
	p, err := Profile(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, 0, p.ConnectionDegree)
	assert.Equal(t, 0, p.FollowerCount)
	assert.Equal(t, "", p.Headline)
}

func TestProfile_NoRecord(t *testing.T) {
	d := &fakeDriver{result: []any{}}
	_, err := Profile(context.Background(), d)
	require.Error(t, err)
	assert.Equal(t, resilience.CategoryAutomation, resilience.CategoryOf(err))
}

func TestProfile_EvaluateError(t *testing.T) {
	d := &fakeDriver{err: eris.New("context destroyed")}
	_, err := Profile(context.Background(), d)
	require.Error(t, err)
	assert.Equal(t, resilience.CategoryAutomation, resilience.CategoryOf(err))
}

func TestParseDegree(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1st", 1},
		{"2nd", 2},
		{"3rd", 3},
		{"  2nd  ", 2},
		{"", 0},
		{"out of network", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseDegree(tt.in), "input %q", tt.in)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1,234 followers", 1234},
		{"500+ connections", 500},
		{"12 followers", 12},
		{"", 0},
		{"followers", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseCount(tt.in), "input %q", tt.in)
	}
}
