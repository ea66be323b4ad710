package app

import (
	"fmt"
	"strconv"
	"strings"

	"golang-wa-dispatch/internal/domain"
	"golang-wa-dispatch/internal/ports"
)

// Options are the per-call knobs a caller may pass to the engine.
type Options struct {
	LogPlatform   string // label stored with the delivery log row
	ForceProvider string // only gateways with this provider code are considered
	ForceFailover bool   // try every candidate even when the top gateway is manual
	Media         ports.MediaOptions
}

// DefaultOptions returns the options used when a caller passes none.
func DefaultOptions() Options {
	return Options{
		LogPlatform: "dispatch",
		Media:       ports.MediaOptions{SendAsCaption: true},
	}
}

// OptionsFromMap parses the loose option map used by HTTP and queue callers.
// Unknown keys are ignored.
func OptionsFromMap(m map[string]any) Options {
	opts := DefaultOptions()
	if m == nil {
		return opts
	}

	if v := optString(m, "log_platform"); v != "" {
		opts.LogPlatform = v
	}
	opts.ForceProvider = string(domain.NormalizeProviderCode(optString(m, "force_provider")))
	opts.ForceFailover = optBool(m, "force_failover", false)

	opts.Media.Kind = strings.ToLower(optString(m, "media_kind"))
	opts.Media.MIME = strings.ToLower(optString(m, "media_mime"))
	opts.Media.Ext = strings.TrimPrefix(strings.ToLower(optString(m, "media_ext")), ".")
	opts.Media.SendAsCaption = optBool(m, "send_as_caption", true)
	opts.Media.GroupFileURL = optString(m, "group_file_url")
	return opts
}

func optString(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func optBool(m map[string]any, key string, def bool) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		return b
	default:
		return def
	}
}
