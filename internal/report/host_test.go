package report

import (
	"context"
	"runtime"
	"strings"
	"testing"
)

func TestHostLine(t *testing.T) {
	got := HostLine(context.Background())

	want := runtime.GOOS + "/" + runtime.GOARCH
	if !strings.HasPrefix(got, want) {
		t.Errorf("HostLine() = %q, want prefix %q", got, want)
	}
}
