package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProfileURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"https with www and slash", "https://www.linkedin.com/in/janedoe/", "linkedin.com/in/janedoe"},
		{"http scheme", "http://linkedin.com/in/janedoe", "linkedin.com/in/janedoe"},
		{"no scheme", "linkedin.com/in/janedoe", "linkedin.com/in/janedoe"},
		{"mixed case", "HTTPS://WWW.LinkedIn.com/in/JaneDoe", "linkedin.com/in/janedoe"},
		{"surrounding whitespace", "  https://linkedin.com/in/janedoe  ", "linkedin.com/in/janedoe"},
		{"multiple trailing slashes", "linkedin.com/in/janedoe///", "linkedin.com/in/janedoe"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeProfileURL(tt.in))
		})
	}
}

func TestNormalizeProfileURL_Idempotent(t *testing.T) {
	inputs := []string{
		"https://www.linkedin.com/in/janedoe/",
		"HTTP://example.com/profile",
		"already/normal",
	}
	for _, in := range inputs {
		once := NormalizeProfileURL(in)
		assert.Equal(t, once, NormalizeProfileURL(once))
	}
}

func TestNormalizeProfileURL_VariantsCollide(t *testing.T) {
	variants := []string{
		"https://www.linkedin.com/in/janedoe/",
		"http://www.linkedin.com/in/janedoe",
		"https://linkedin.com/in/JaneDoe/",
		"www.linkedin.com/in/janedoe",
		"linkedin.com/in/janedoe",
	}
	want := NormalizeProfileURL(variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, want, NormalizeProfileURL(v), "variant %q", v)
	}
}
