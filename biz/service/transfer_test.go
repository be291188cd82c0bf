package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yi-nology/asset_bridge/pkg/validator"
)

func newOriginServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/missing") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("body of " + r.URL.Path))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTransfer(t *testing.T) {
	srv := newOriginServer(t)
	ctx := context.Background()

	t.Run("MissingURL", func(t *testing.T) {
		s := newTestService(t, testCDNConfig(t.TempDir()), &spyProvider{}, nil)
		if got := s.Transfer(ctx, "", "img/a.png"); got != TransferMissingURL {
			t.Fatalf("expected %s, got %s", TransferMissingURL, got)
		}
	})

	t.Run("WritesRemotePath", func(t *testing.T) {
		pub := t.TempDir()
		s := newTestService(t, testCDNConfig(pub), &spyProvider{}, nil)
		if got := s.Transfer(ctx, srv.URL+"/src/a.png", "https://cdn.example.com/img/a.png?v=2"); got != TransferOK {
			t.Fatalf("expected OK, got %s", got)
		}
		data, err := os.ReadFile(filepath.Join(pub, "img", "a.png"))
		if err != nil {
			t.Fatalf("read transferred file: %v", err)
		}
		if string(data) != "body of /src/a.png" {
			t.Fatalf("unexpected content %q", data)
		}
	})

	t.Run("DefaultsToSourcePath", func(t *testing.T) {
		pub := t.TempDir()
		s := newTestService(t, testCDNConfig(pub), &spyProvider{}, nil)
		if got := s.Transfer(ctx, srv.URL+"/assets/app.css", ""); got != TransferOK {
			t.Fatalf("expected OK, got %s", got)
		}
		if _, err := os.Stat(filepath.Join(pub, "assets", "app.css")); err != nil {
			t.Fatalf("expected file at source path: %v", err)
		}
	})

	t.Run("StaysInsidePublicDir", func(t *testing.T) {
		pub := t.TempDir()
		s := newTestService(t, testCDNConfig(pub), &spyProvider{}, nil)
		if got := s.Transfer(ctx, srv.URL+"/x", "/../../etc/evil.txt"); got != TransferOK {
			t.Fatalf("expected OK, got %s", got)
		}
		if _, err := os.Stat(filepath.Join(pub, "etc", "evil.txt")); err != nil {
			t.Fatalf("expected file below public dir: %v", err)
		}
	})

	t.Run("NoPath", func(t *testing.T) {
		s := newTestService(t, testCDNConfig(t.TempDir()), &spyProvider{}, nil)
		if got := s.Transfer(ctx, srv.URL+"/x", "?v=1"); got != TransferBadPath {
			t.Fatalf("expected %s, got %s", TransferBadPath, got)
		}
	})

	t.Run("TooLarge", func(t *testing.T) {
		s := newTestService(t, testCDNConfig(t.TempDir()), &spyProvider{}, nil)
		s.limits = &validator.TransferConfig{MaxFileSize: 4}
		if got := s.Transfer(ctx, srv.URL+"/src/a.png", "img/a.png"); got != TransferFailed {
			t.Fatalf("expected %s, got %s", TransferFailed, got)
		}
	})

	t.Run("ClientRefusesOversizedBody", func(t *testing.T) {
		pub := t.TempDir()
		s := newTestService(t, testCDNConfig(pub), &spyProvider{}, nil)
		c, err := newFetchClient(4)
		if err != nil {
			t.Fatalf("newFetchClient returned error: %v", err)
		}
		s.client = c

		// The size check after reading still allows 64MB, so only the
		// client can reject this body.
		if _, err := s.fetch(ctx, srv.URL+"/src/a.png"); err == nil || errors.Is(err, validator.ErrFileTooBig) {
			t.Fatalf("expected the client to refuse the body, got %v", err)
		}
		if got := s.Transfer(ctx, srv.URL+"/src/a.png", "img/a.png"); got != TransferFailed {
			t.Fatalf("expected %s, got %s", TransferFailed, got)
		}
		if _, err := os.Stat(filepath.Join(pub, "img", "a.png")); !os.IsNotExist(err) {
			t.Fatalf("expected nothing stored, stat err %v", err)
		}
	})

	t.Run("FetchFailure", func(t *testing.T) {
		s := newTestService(t, testCDNConfig(t.TempDir()), &spyProvider{}, nil)
		if got := s.Transfer(ctx, srv.URL+"/missing.png", "img/a.png"); got != TransferFailed {
			t.Fatalf("expected %s, got %s", TransferFailed, got)
		}
	})
}

func TestTransferKeepsPreviousFile(t *testing.T) {
	pub := t.TempDir()
	s := newTestService(t, testCDNConfig(pub), &spyProvider{}, nil)
	writeFile(t, pub, "img/a.png", "old")

	now := time.Unix(1700000000, 0)
	if err := s.store("img/a.png", []byte("new"), now); err != nil {
		t.Fatalf("store returned error: %v", err)
	}
	backup, err := os.ReadFile(filepath.Join(pub, "img", "a.png-old-1700000000"))
	if err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
	if string(backup) != "old" {
		t.Fatalf("unexpected backup content %q", backup)
	}
	current, _ := os.ReadFile(filepath.Join(pub, "img", "a.png"))
	if string(current) != "new" {
		t.Fatalf("unexpected current content %q", current)
	}
}

func TestTransferStoreLeavesTargetOnFailure(t *testing.T) {
	pub := t.TempDir()
	s := newTestService(t, testCDNConfig(pub), &spyProvider{}, nil)
	writeFile(t, pub, "img/a.png", "old")
	// A non-empty directory at the backup path makes moving the old file aside fail.
	writeFile(t, pub, "img/a.png-old-1700000000/keep", "x")

	if err := s.store("img/a.png", []byte("new"), time.Unix(1700000000, 0)); err == nil {
		t.Fatal("expected store to fail")
	}
	current, err := os.ReadFile(filepath.Join(pub, "img", "a.png"))
	if err != nil || string(current) != "old" {
		t.Fatalf("expected previous file intact, got %q, %v", current, err)
	}
	assertNoTempFiles(t, filepath.Join(pub, "img"))
}

func TestTransferStoreCleansUp(t *testing.T) {
	pub := t.TempDir()
	s := newTestService(t, testCDNConfig(pub), &spyProvider{}, nil)
	if err := s.store("img/b.png", []byte("fresh"), time.Now()); err != nil {
		t.Fatalf("store returned error: %v", err)
	}
	info, err := os.Stat(filepath.Join(pub, "img", "b.png"))
	if err != nil {
		t.Fatalf("expected stored file: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("unexpected mode %v", info.Mode().Perm())
	}
	assertNoTempFiles(t, filepath.Join(pub, "img"))
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".transfer-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestTargetPath(t *testing.T) {
	cases := map[string]string{
		"img/a.png":                       "img/a.png",
		"/img/a.png":                      "img/a.png",
		"https://cdn.example.com/b/c.css": "b/c.css",
		"/a/../b.js":                      "b.js",
	}
	for in, want := range cases {
		got, err := targetPath(in)
		if err != nil || got != want {
			t.Fatalf("targetPath(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", "?x=1", "https://cdn.example.com", "/"} {
		if _, err := targetPath(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
