package version

import (
	"fmt"
	"runtime"

	"github.com/slimtoolkit/fstrace/pkg/consts"
)

//set with -ldflags "-X github.com/slimtoolkit/fstrace/pkg/version.appVersionTag=..."
var (
	appVersionTag  = "latest"
	appVersionRev  = "latest"
	appVersionTime = "latest"
	currentVersion = "v"
)

func init() {
	currentVersion = fmt.Sprintf("%v|%v|%v|%v|%v", runtime.GOOS, consts.AppVersionName, appVersionTag, appVersionRev, appVersionTime)
}

// Current returns the current version information
func Current() string {
	return currentVersion
}

func Tag() string {
	return appVersionTag
}

type Info struct {
	App     string `json:"app"`
	Version string `json:"version"`
	Tag     string `json:"tag"`
	Rev     string `json:"rev"`
	Time    string `json:"time"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
	Go      string `json:"go"`
}

func Details() *Info {
	return &Info{
		App:     consts.AppName,
		Version: currentVersion,
		Tag:     appVersionTag,
		Rev:     appVersionRev,
		Time:    appVersionTime,
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Go:      runtime.Version(),
	}
}
