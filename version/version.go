package version

import (
	"runtime/debug"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// Info is the build identity reported in logs, health checks and --version.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Dirty     bool   `json:"dirty,omitempty"`
}

// Get returns the build identity, filling commit and build time from the
// embedded VCS stamp when they were not linked in.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	applySettings(&info, bi.Settings)
	return info
}

func applySettings(info *Info, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		}
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
}

// String renders "1.4.0", "1.4.0-abc1234" or "1.4.0-abc1234-dirty".
func (i Info) String() string {
	s := i.Version
	if i.Commit != "" {
		s += "-" + i.Commit
	}
	if i.Dirty {
		s += "-dirty"
	}
	return s
}
