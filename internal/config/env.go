package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/v2"
)

// reader pulls typed values out of the merged koanf tree.  Malformed values
// fall back to the default, the same way unset ones do.  Required keys
// that are missing are collected so Load can report all of them at once.
type reader struct {
	k       *koanf.Koanf
	missing []string
}

func (r *reader) raw(key string) string {
	if !r.k.Exists(key) {
		return ""
	}
	v := r.k.Get(key)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func (r *reader) str(key, def string) string {
	if v := r.raw(key); v != "" {
		return v
	}
	return def
}

func (r *reader) required(key string) string {
	v := r.raw(key)
	if v == "" {
		r.missing = append(r.missing, strings.ToUpper(key))
	}
	return v
}

func (r *reader) boolean(key string, def bool) bool {
	switch r.raw(key) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return def
}

func (r *reader) integer(key string, def int) int {
	v := r.raw(key)
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v := r.raw(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

// list splits a comma separated value; YAML sequences are accepted too.
func (r *reader) list(key string, def []string) []string {
	if !r.k.Exists(key) {
		return def
	}
	var parts []string
	switch v := r.k.Get(key).(type) {
	case []any:
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
	default:
		parts = strings.Split(fmt.Sprint(v), ",")
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
