package config

import (
	"strconv"
	"strings"
)

// Value returns the display form of the named field from Fields.
// Unknown names return an empty string.
func (c *Config) Value(field string) string {
	switch field {
	case "root":
		return c.Root
	case "spec_paths":
		return listValue(c.SpecPaths)
	case "include":
		return listValue(c.Include)
	case "exclude":
		return listValue(c.Exclude)
	case "serve.port":
		return strconv.Itoa(c.Serve.Port)
	case "serve.open_browser":
		return strconv.FormatBool(c.Serve.OpenBrowser)
	case "statuses":
		return listValue(c.Statuses)
	case "history.limit":
		return strconv.Itoa(c.History.Limit)
	case "watch.debounce_ms":
		return strconv.Itoa(c.Watch.DebounceMS)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return strconv.FormatBool(c.LogTimestamps)
	case "log_caller":
		return strconv.FormatBool(c.LogCaller)
	}
	return ""
}

func listValue(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}
