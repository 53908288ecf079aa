package main

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var embeddedVersion string

// Version reports the module version of installed binaries. Development
// builds report "devel-<VERSION>+<revision>", with a "-dirty" suffix when
// the working tree was modified.
func Version() string {
	info, _ := debug.ReadBuildInfo()
	return versionFrom(strings.TrimSpace(embeddedVersion), info)
}

func versionFrom(base string, info *debug.BuildInfo) string {
	if info == nil {
		return base
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) >= 7 {
				rev = s.Value[:7]
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return "devel-" + base
	}
	if dirty {
		rev += "-dirty"
	}
	return "devel-" + base + "+" + rev
}
