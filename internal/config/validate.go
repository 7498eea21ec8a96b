package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything wrong with it.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	out.LogStore.URL = strings.TrimSpace(out.LogStore.URL)
	out.WordPress.BaseURL = strings.TrimRight(strings.TrimSpace(out.WordPress.BaseURL), "/")

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.ToLower(strings.TrimSpace(x))
			if x == "" || seen[x] {
				continue
			}
			seen[x] = true
			ys = append(ys, x)
		}
		return ys
	}
	out.Filters.TypesAllow = trimList(out.Filters.TypesAllow)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.LogStore.URL == "" {
		res.addErr("logstore.url is required")
	} else if u, err := url.Parse(out.LogStore.URL); err != nil || u.Scheme == "" || u.Host == "" {
		res.addErr("logstore.url is not an absolute URL: %q", out.LogStore.URL)
	}
	if strings.TrimSpace(out.LogStore.Username) == "" {
		res.addErr("logstore.username is required")
	}
	if out.LogStore.Password != "" {
		res.addWarn("logstore.password is set in the config file; prefer the OS keychain.")
	}

	if out.WordPress.BaseURL == "" {
		res.addErr("wordpress.base_url is required")
	}
	if out.WordPress.FreshnessSeconds < 0 {
		res.addErr("wordpress.freshness_seconds must be >= 0")
	}

	if out.HTTP.MaxRetries <= 0 {
		res.addErr("http.max_retries must be > 0")
	}
	if out.HTTP.RetryDelayMS < 0 {
		res.addErr("http.retry_delay_ms must be >= 0")
	}
	if out.HTTP.TimeoutSeconds <= 0 {
		res.addErr("http.timeout_seconds must be > 0")
	}
	if out.HTTP.ReqPerSec < 0 {
		res.addErr("http.req_per_sec must be >= 0")
	}

	if out.Pipeline.MaxConcurrent <= 0 {
		res.addErr("pipeline.max_concurrent must be > 0")
	} else if out.Pipeline.MaxConcurrent > 64 {
		res.addWarn("pipeline.max_concurrent is very high (%d); the upstream APIs may throttle you.", out.Pipeline.MaxConcurrent)
	}
	if out.Pipeline.DefaultPageSize <= 0 {
		res.addErr("pipeline.default_page_size must be > 0")
	}

	for _, t := range out.Filters.TypesAllow {
		if t != "post" && t != "job-listing" {
			res.addErr("filters.types_allow: unknown content type %q (want post or job-listing)", t)
		}
	}

	if out.Refresh.Enabled && out.Refresh.IntervalSeconds <= 0 {
		res.addErr("refresh.interval_seconds must be > 0 when refresh.enabled=true")
	} else if out.Refresh.Enabled && out.Refresh.IntervalSeconds < 60 {
		res.addWarn("refresh.interval_seconds is very low (%d); every run re-enriches the full record set.", out.Refresh.IntervalSeconds)
	}

	return out, res
}
