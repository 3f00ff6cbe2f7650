package attribution

import (
	"strings"

	"github.com/vincentbai/browsetrace-tracker/internal/models"
)

// Platform names the ad network a visit most likely came from. Click ids win
// over utm_source hints.
func Platform(params models.Fields) string {
	get := func(key string) string {
		v, _ := params.Get(key)
		s, _ := v.(string)
		return s
	}
	switch {
	case get("gclid") != "":
		return "Google Ads"
	case get("fbclid") != "":
		return "Meta/Facebook"
	case get("ttclid") != "":
		return "TikTok"
	}

	source := strings.ToLower(get("utm_source"))
	if source == "" {
		return "Unknown"
	}
	for _, rule := range sourceRules {
		for _, needle := range rule.needles {
			if strings.Contains(source, needle) {
				return rule.platform
			}
		}
	}
	return "Unknown"
}

var sourceRules = []struct {
	platform string
	needles  []string
}{
	{"Google Ads", []string{"google", "gclid"}},
	{"Meta/Facebook", []string{"facebook", "meta"}},
	{"Instagram", []string{"instagram"}},
	{"TikTok", []string{"tiktok"}},
	{"Microsoft Ads", []string{"bing", "microsoft"}},
	{"LinkedIn", []string{"linkedin"}},
	{"Email", []string{"email", "mailchimp"}},
}
