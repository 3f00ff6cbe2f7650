// Package attribution extracts campaign tagging parameters from page URLs.
package attribution

import (
	"net/url"
	"strings"

	"github.com/vincentbai/browsetrace-tracker/internal/models"
)

const CampaignPrefix = "utm_"

// ClickIDKeys are the ad-platform click identifiers kept alongside utm_ tags.
var ClickIDKeys = []string{"gclid", "fbclid", "ttclid"}

// Recognized reports whether key is kept in attribution output.
func Recognized(key string) bool {
	if strings.HasPrefix(key, CampaignPrefix) {
		return true
	}
	for _, k := range ClickIDKeys {
		if key == k {
			return true
		}
	}
	return false
}

// Extract returns the recognized query parameters of rawURL in order of first
// appearance; a repeated key keeps its last value. It never fails: an
// URL without a query yields empty params.
func Extract(rawURL string) models.Fields {
	var params models.Fields
	query := rawURL
	if i := strings.IndexByte(query, '#'); i >= 0 {
		query = query[:i]
	}
	i := strings.IndexByte(query, '?')
	if i < 0 {
		return params
	}
	query = query[i+1:]

	for query != "" {
		var pair string
		pair, query, _ = strings.Cut(query, "&")
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key := unescape(rawKey)
		if !Recognized(key) {
			continue
		}
		params.Set(key, unescape(rawValue))
	}
	return params
}

// unescape decodes form encoding; invalid percent sequences are kept as-is.
func unescape(s string) string {
	v, err := url.QueryUnescape(s)
	if err != nil {
		return strings.ReplaceAll(s, "+", " ")
	}
	return v
}
