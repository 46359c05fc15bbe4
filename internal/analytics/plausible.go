// Package analytics renders the optional Plausible Analytics snippet.
package analytics

import (
	"html/template"
	"net/url"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/booknotes/internal/config"
)

// Plausible holds the effective Plausible Analytics configuration.
type Plausible struct {
	Domain     string
	ScriptURL  string
	Extensions []string
}

// NewPlausible builds the configuration from the environment settings.
// Unknown extensions are dropped with a warning. It returns nil when no
// domain is configured.
func NewPlausible(cfg config.Plausible) *Plausible {
	if cfg.Domain == "" {
		return nil
	}

	scriptURL := cfg.ScriptURL
	if scriptURL == "" {
		scriptURL = config.DefaultPlausibleScriptURL
	}

	var extensions []string
	for _, ext := range parseExtensions(cfg.Extensions) {
		if !IsValidExtension(ext) {
			log.Warn().Str("extension", ext).Msg("Ignoring unknown Plausible extension")
			continue
		}
		extensions = append(extensions, ext)
	}

	return &Plausible{
		Domain:     cfg.Domain,
		ScriptURL:  scriptURL,
		Extensions: extensions,
	}
}

// Enabled reports whether the snippet should be rendered.
func (p *Plausible) Enabled() bool {
	return p != nil && p.Domain != ""
}

// Origin returns the scheme and host serving the script, for the
// Content-Security-Policy. Empty when disabled or unparsable.
func (p *Plausible) Origin() string {
	if !p.Enabled() {
		return ""
	}
	u, err := url.Parse(p.ScriptURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// ScriptTag returns the escaped script element, or nothing when disabled.
func (p *Plausible) ScriptTag() template.HTML {
	if !p.Enabled() {
		return ""
	}

	scriptURL := BuildScriptURL(p.ScriptURL, p.Extensions)

	return template.HTML(`<script defer data-domain="` + template.HTMLEscapeString(p.Domain) + `" src="` + template.HTMLEscapeString(scriptURL) + `"></script>`)
}

// BuildScriptURL constructs the Plausible script URL with extensions
func BuildScriptURL(baseURL string, extensions []string) string {
	if len(extensions) == 0 {
		return baseURL
	}

	// Plausible extension format: script.ext1.ext2.js
	if base, found := strings.CutSuffix(baseURL, ".js"); found {
		return base + "." + strings.Join(extensions, ".") + ".js"
	}

	return baseURL
}

// parseExtensions splits comma-separated extensions and trims whitespace
func parseExtensions(s string) []string {
	if s == "" {
		return []string{}
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ValidExtensions lists the known Plausible script extensions
var ValidExtensions = []string{
	"outbound-links",
	"file-downloads",
	"tagged-events",
	"hash",
	"compat",
	"local",
	"manual",
	"pageview-props",
	"revenue",
}

// IsValidExtension checks if an extension is known
func IsValidExtension(ext string) bool {
	return slices.Contains(ValidExtensions, ext)
}
