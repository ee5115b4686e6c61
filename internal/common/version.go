package common

import "fmt"

type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// GetVersionInfo normalizes the ldflags build metadata, falling back to dev
// values for local builds.
func GetVersionInfo(version, commit, date string) VersionInfo {
	if version == "" {
		version = "dev"
	}
	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}
	return VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", v.Version, v.Commit, v.Date)
}
