// Package engage implements the ICP engagement pipeline: it collects
// the people who engaged with a post, filters them against an ideal
// customer profile, and sends connection requests to the matches.
package engage

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ICPFilter describes which engagers qualify for outreach. Keyword
// matching is case-insensitive substring matching against the
// engager's headline.
type ICPFilter struct {
	// IncludeKeywords admit an engager when any keyword matches.
	// Empty means every engager passes the include check.
	IncludeKeywords []string `yaml:"include_keywords"`
	// ExcludeKeywords reject an engager when any keyword matches,
	// regardless of includes.
	ExcludeKeywords []string `yaml:"exclude_keywords"`
	// MaxConnectionDegree rejects engagers farther than this degree.
	// Zero means no degree restriction.
	MaxConnectionDegree int `yaml:"max_connection_degree"`
}

// Matches reports whether an engager passes the filter. Exclusion
// dominates: an engager matching both lists is rejected.
func (f ICPFilter) Matches(e Engager) bool {
	headline := strings.ToLower(e.Headline)

	for _, kw := range f.ExcludeKeywords {
		if kw != "" && strings.Contains(headline, strings.ToLower(kw)) {
			return false
		}
	}

	if f.MaxConnectionDegree > 0 && e.ConnectionDegree > f.MaxConnectionDegree {
		return false
	}

	if len(f.IncludeKeywords) == 0 {
		return true
	}
	for _, kw := range f.IncludeKeywords {
		if kw != "" && strings.Contains(headline, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// presetFile is the on-disk shape of a set of named ICP filters.
type presetFile struct {
	Presets map[string]ICPFilter `yaml:"presets"`
}

// LoadPreset reads the named filter from a YAML preset file.
func LoadPreset(path, name string) (ICPFilter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ICPFilter{}, eris.Wrapf(err, "engage: read presets %s", path)
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ICPFilter{}, eris.Wrapf(err, "engage: parse presets %s", path)
	}

	preset, ok := file.Presets[name]
	if !ok {
		return ICPFilter{}, eris.Errorf("engage: preset %q not found in %s", name, path)
	}
	return preset, nil
}
