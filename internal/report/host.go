package report

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// HostLine describes the packaging host for the build log: GOOS/GOARCH
// plus the OS distribution when it can be detected. Detection failures
// degrade to the bare GOOS/GOARCH form.
func HostLine(ctx context.Context) string {
	line := runtime.GOOS + "/" + runtime.GOARCH

	platform, _, version, err := host.PlatformInformationWithContext(ctx)
	if err != nil || platform == "" {
		return line
	}
	if version == "" {
		return line + " (" + platform + ")"
	}
	return line + " (" + platform + " " + version + ")"
}
