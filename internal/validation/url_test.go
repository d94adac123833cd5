package validation

import (
	"strings"
	"testing"
)

func TestNewArticleURLValidator(t *testing.T) {
	v := NewArticleURLValidator()
	if v.AllowLocalhost {
		t.Error("Expected AllowLocalhost to be false")
	}
	if len(v.AllowedHosts) == 0 {
		t.Error("Expected strict validator to restrict hosts")
	}
	if v.MaxLength != 2048 {
		t.Errorf("Expected MaxLength to be 2048, got %d", v.MaxLength)
	}

	p := NewPermissiveArticleURLValidator()
	if !p.AllowLocalhost {
		t.Error("Expected AllowLocalhost to be true for permissive mode")
	}
	if len(p.AllowedHosts) != 0 {
		t.Error("Expected permissive validator to accept any host")
	}
}

func TestValidate(t *testing.T) {
	v := NewArticleURLValidator()

	tests := []struct {
		name        string
		input       string
		expected    string
		shouldError bool
		errorMsg    string
	}{
		{
			name:     "english permalink",
			input:    "https://en.wikipedia.org/wiki/Great_Wall_of_China",
			expected: "https://en.wikipedia.org/wiki/Great_Wall_of_China",
		},
		{
			name:     "escaped chinese permalink",
			input:    "https://zh.wikipedia.org/wiki/%E9%95%BF%E5%9F%8E",
			expected: "https://zh.wikipedia.org/wiki/%E9%95%BF%E5%9F%8E",
		},
		{
			name:     "thumbnail",
			input:    "  https://upload.wikimedia.org/wikipedia/commons/thumb/a/ab/Wall.jpg/400px-Wall.jpg ",
			expected: "https://upload.wikimedia.org/wikipedia/commons/thumb/a/ab/Wall.jpg/400px-Wall.jpg",
		},
		{
			name:     "bare domain",
			input:    "https://wikipedia.org/",
			expected: "https://wikipedia.org/",
		},
		{name: "empty", input: "", shouldError: true, errorMsg: "cannot be empty"},
		{name: "whitespace", input: "   ", shouldError: true, errorMsg: "cannot be empty"},
		{name: "markup", input: "https://en.wikipedia.org/wiki/<script>", shouldError: true, errorMsg: "invalid characters"},
		{name: "quote", input: "https://en.wikipedia.org/wiki/a\"b", shouldError: true, errorMsg: "invalid characters"},
		{name: "javascript scheme", input: "javascript:alert(1)", shouldError: true, errorMsg: "http or https"},
		{name: "file scheme", input: "file:///etc/passwd", shouldError: true, errorMsg: "http or https"},
		{name: "no scheme", input: "en.wikipedia.org/wiki/X", shouldError: true, errorMsg: "http or https"},
		{name: "no host", input: "https:///wiki/X", shouldError: true, errorMsg: "hostname"},
		{name: "credentials", input: "https://user:pw@en.wikipedia.org/", shouldError: true, errorMsg: "credentials"},
		{name: "other host", input: "https://example.org/wiki/X", shouldError: true, errorMsg: "not a Wikipedia host"},
		{name: "lookalike host", input: "https://evilwikipedia.org/", shouldError: true, errorMsg: "not a Wikipedia host"},
		{name: "suffix trick", input: "https://wikipedia.org.evil.com/", shouldError: true, errorMsg: "not a Wikipedia host"},
		{name: "localhost", input: "http://localhost:8080/", shouldError: true, errorMsg: "localhost"},
		{name: "loopback", input: "http://127.0.0.1/", shouldError: true, errorMsg: "localhost"},
		{name: "private ip", input: "http://192.168.1.10/", shouldError: true, errorMsg: "private IP"},
		{name: "traversal", input: "https://en.wikipedia.org/wiki/../../etc", shouldError: true, errorMsg: "traversal"},
		{name: "too long", input: "https://en.wikipedia.org/wiki/" + strings.Repeat("a", 2048), shouldError: true, errorMsg: "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.input)
			if tt.shouldError {
				if err == nil {
					t.Fatalf("Expected error for %q, got %q", tt.input, got)
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestValidatePermissive(t *testing.T) {
	v := NewPermissiveArticleURLValidator()

	for _, input := range []string{
		"http://localhost:8080/wiki/X",
		"http://en.localhost/w/api.php",
		"http://127.0.0.1:43211/en/w/api.php",
		"https://example.org/image.png",
	} {
		if _, err := v.Validate(input); err != nil {
			t.Errorf("Expected %q to pass, got %v", input, err)
		}
	}

	if _, err := v.Validate("ftp://localhost/"); err == nil {
		t.Error("Expected scheme check to apply in permissive mode")
	}
}

func TestValidateEndpointTemplate(t *testing.T) {
	strict := NewArticleURLValidator()
	permissive := NewPermissiveArticleURLValidator()

	tests := []struct {
		name      string
		validator *ArticleURLValidator
		tmpl      string
		valid     bool
	}{
		{"default endpoint", strict, "https://%s.wikipedia.org/w/api.php", true},
		{"no placeholder", strict, "https://en.wikipedia.org/w/api.php", false},
		{"two placeholders", strict, "https://%s.wikipedia.org/%s/api.php", false},
		{"other verb", strict, "https://%s.wikipedia.org/w/api.php?x=%d", false},
		{"foreign host", strict, "https://%s.example.org/w/api.php", false},
		{"local fake rejected when strict", strict, "http://%s.localhost/w/api.php", false},
		{"local fake", permissive, "http://%s.localhost/w/api.php", true},
		{"path placeholder", permissive, "http://127.0.0.1:9000/%s/w/api.php", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validator.ValidateEndpointTemplate(tt.tmpl)
			if tt.valid && err != nil {
				t.Errorf("Expected %q to be valid, got %v", tt.tmpl, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("Expected %q to be rejected", tt.tmpl)
			}
		})
	}
}

func TestIsLocalhost(t *testing.T) {
	for _, h := range []string{"localhost", "en.localhost", "127.0.0.1", "::1"} {
		if !isLocalhost(h) {
			t.Errorf("Expected %q to be localhost", h)
		}
	}
	for _, h := range []string{"en.wikipedia.org", "localhost.com", "10.0.0.1"} {
		if isLocalhost(h) {
			t.Errorf("Expected %q not to be localhost", h)
		}
	}
}
