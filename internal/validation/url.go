package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// wikiHosts are the domains article links and thumbnails are served from.
var wikiHosts = []string{"wikipedia.org", "wikimedia.org"}

// ArticleURLValidator checks links before they are handed to an external
// program: permalinks, thumbnails, and the API endpoint.
type ArticleURLValidator struct {
	// AllowLocalhost permits localhost and loopback hosts
	AllowLocalhost bool
	// AllowedHosts restricts links to these domains and their subdomains.
	// Empty means any public host.
	AllowedHosts []string
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewArticleURLValidator only accepts links on the Wikipedia and Wikimedia
// domains.
func NewArticleURLValidator() *ArticleURLValidator {
	return &ArticleURLValidator{
		AllowedHosts: wikiHosts,
		MaxLength:    2048,
	}
}

// NewPermissiveArticleURLValidator accepts any host, including localhost.
// Used with local fakes of the API.
func NewPermissiveArticleURLValidator() *ArticleURLValidator {
	return &ArticleURLValidator{
		AllowLocalhost: true,
		MaxLength:      2048,
	}
}

// Validate returns the normalized form of input or an error explaining why
// it may not be opened.
func (v *ArticleURLValidator) Validate(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` \t\n") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("URL must use http or https protocol")
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}
	if u.User != nil {
		return "", fmt.Errorf("URL must not carry credentials")
	}

	if err := v.validateHost(strings.ToLower(u.Hostname())); err != nil {
		return "", err
	}
	if strings.Contains(u.Path, "..") {
		return "", fmt.Errorf("directory traversal patterns not allowed in URL path")
	}

	return u.String(), nil
}

func (v *ArticleURLValidator) validateHost(hostname string) error {
	if isLocalhost(hostname) {
		if !v.AllowLocalhost {
			return fmt.Errorf("localhost URLs are not permitted")
		}
		return nil
	}

	if ip := net.ParseIP(hostname); ip != nil {
		if !v.AllowLocalhost && (ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}

	if len(v.AllowedHosts) == 0 {
		return nil
	}
	for _, allowed := range v.AllowedHosts {
		if hostname == allowed || strings.HasSuffix(hostname, "."+allowed) {
			return nil
		}
	}
	return fmt.Errorf("host %q is not a Wikipedia host", hostname)
}

// ValidateEndpointTemplate checks an API endpoint format string: exactly one
// %s for the language subdomain, no other verbs, and a valid URL once the
// subdomain is substituted.
func (v *ArticleURLValidator) ValidateEndpointTemplate(tmpl string) error {
	if n := strings.Count(tmpl, "%s"); n != 1 {
		return fmt.Errorf("endpoint must contain exactly one %%s, found %d", n)
	}
	if strings.Count(tmpl, "%") != 1 {
		return fmt.Errorf("endpoint contains unsupported format verbs")
	}
	_, err := v.Validate(strings.Replace(tmpl, "%s", "en", 1))
	return err
}

// isLocalhost checks if a hostname refers to localhost
func isLocalhost(hostname string) bool {
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}
