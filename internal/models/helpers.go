package models

import "strings"

// ShortID returns the first eight characters of a job id for compact labels.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// JobLabel formats a job id the way the dashboard prints it, e.g. JOB-1a2b3c4d.
func JobLabel(id string) string {
	return "JOB-" + ShortID(id)
}

// StatusLabel turns a backend status into display text: "generating_brief"
// becomes "GENERATING BRIEF".
func StatusLabel(status string) string {
	if status == "" {
		return "UNKNOWN"
	}
	return strings.ToUpper(strings.ReplaceAll(status, "_", " "))
}
