// Package buildinfo holds the version stamped into release builds
package buildinfo

import (
	"fmt"
	"strconv"
	"time"
)

// set with -ldflags "-X github.com/lutris/installkit/buildinfo.Version=..."
var (
	Version = "head"
	// BuiltAt is a unix timestamp
	BuiltAt = ""
	Commit  = ""
)

// VersionString formats the version, build date and commit
func VersionString() string {
	res := Version
	switch {
	case BuiltAt == "":
		res += ", no build date"
	default:
		epoch, err := strconv.ParseInt(BuiltAt, 10, 64)
		if err != nil {
			res += ", invalid build date"
		} else {
			res += ", built on " + time.Unix(epoch, 0).UTC().Format("Jan _2 2006 @ 15:04:05")
		}
	}
	if Commit != "" {
		res = fmt.Sprintf("%s, ref %s", res, Commit)
	}
	return res
}
