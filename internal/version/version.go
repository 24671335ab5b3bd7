// Package version carries build identification for the bridge.
package version

import (
	"fmt"
	"runtime"
	"time"
)

// Set at build time with -ldflags "-X .../internal/version.Version=...".
var (
	Version = "2.0.0"
	Commit  = "dev"
)

const (
	Name        = "metatrader-bridge"
	Description = "REST bridge between MetaTrader terminals and external strategies"
	Copyright   = "PressPage Entertainment Inc DBA PINGLEWARE"
	License     = "CC-BY-4.0"
)

// DllVersion is the banner returned to terminals that ask for the library
// version.
func DllVersion(now time.Time) string {
	return fmt.Sprintf("Metatrader API Version %s - Copyright (c) 2009,2012-2013,2019-%d %s", Version, now.Year(), Copyright)
}

// Info describes the running build.
type Info struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	Description string `json:"description"`
	License     string `json:"license"`
	GoVersion   string `json:"go_version"`
}

func Get() Info {
	return Info{
		Name:        Name,
		Version:     Version,
		Commit:      Commit,
		Description: Description,
		License:     License,
		GoVersion:   runtime.Version(),
	}
}
