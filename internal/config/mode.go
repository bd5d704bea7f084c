package config

import "strings"

// CheckMode selects how the validator reacts to violations
type CheckMode string

const (
	CheckStrict     CheckMode = "strict"     // stop at the first error
	CheckPermissive CheckMode = "permissive" // collect every diagnostic
)

// ParseCheckMode converts a string to CheckMode, defaulting to CheckStrict
func ParseCheckMode(s string) CheckMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "permissive", "report":
		return CheckPermissive
	default:
		return CheckStrict
	}
}

// FailFast reports whether the first error ends a check
func (m CheckMode) FailFast() bool {
	return m != CheckPermissive
}

// LogFormat selects the logrus formatter
type LogFormat string

const (
	LogText LogFormat = "text"
	LogJSON LogFormat = "json"
)

// ParseLogFormat converts a string to LogFormat, defaulting to LogText
func ParseLogFormat(s string) LogFormat {
	if strings.EqualFold(strings.TrimSpace(s), "json") {
		return LogJSON
	}
	return LogText
}
