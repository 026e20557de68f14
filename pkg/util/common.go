// Package util provides small helpers shared by the commands.
package util

import "fmt"

// BuildInfo carries values injected with -ldflags "-X main.buildVersion=...".
type BuildInfo struct {
	Version string
	Date    string
	Commit  string
}

// na returns "N/A" if the input string is empty, otherwise it returns the input string.
func na(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

// String renders the build info on one line with N/A for unset values.
func (b BuildInfo) String() string {
	return fmt.Sprintf("version=%s date=%s commit=%s", na(b.Version), na(b.Date), na(b.Commit))
}
