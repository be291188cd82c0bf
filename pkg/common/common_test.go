package common

import (
	"strings"
	"testing"
)

func TestReturnOK(t *testing.T) {
	if got := (CommonResponse{}).ReturnOK(); got.Code != 200 {
		t.Fatalf("expected code 200, got %d", got.Code)
	}
}

func TestCurrentBuild(t *testing.T) {
	old := AppVersion
	AppVersion = "1.2.3"
	defer func() { AppVersion = old }()

	info := CurrentBuild()
	if info.Version != "1.2.3" || info.GoVersion == "" {
		t.Fatalf("unexpected build info %+v", info)
	}
	if !strings.HasPrefix(info.String(), "1.2.3 (commit ") {
		t.Fatalf("unexpected string %q", info.String())
	}
}
