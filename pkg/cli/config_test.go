package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blang/semver"
	"github.com/google/go-cmp/cmp"

	"github.com/Fepozopo/clahe/pkg/clahe"
)

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("CLAHE_MODE", "openmp")
	t.Setenv("CLAHE_WORKERS", "3")
	t.Setenv("CLAHE_BENCH_RUNS", "5")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	want := Config{Mode: clahe.ModeParallel, Workers: 3, BenchRuns: 5}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := map[string]string{
		"CLAHE_MODE":       "gpu",
		"CLAHE_WORKERS":    "many",
		"CLAHE_BENCH_RUNS": "-1",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("%s=%s accepted", key, val)
			}
		})
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	if _, ok := os.LookupEnv("CLAHE_WORKERS"); ok {
		t.Skip("CLAHE_WORKERS set in the environment")
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("# local settings\nCLAHE_WORKERS=6\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("CLAHE_WORKERS") })

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Workers != 6 {
		t.Fatalf("Workers = %d, want 6", cfg.Workers)
	}
}

func TestConfigCheck(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{Input: "a.png", Output: "b.png"}, false},
		{"bench", Config{Input: "a.png", Output: "b.png", BenchRuns: 3}, false},
		{"no output", Config{Input: "a.png"}, true},
		{"bench with validate", Config{Input: "a.png", Output: "b.png", BenchRuns: 3, Validate: true}, true},
	}
	for _, c := range cases {
		if err := c.cfg.Check(); (err != nil) != c.wantErr {
			t.Fatalf("%s: err = %v, wantErr %v", c.name, err, c.wantErr)
		}
	}
}

func TestAverageTimings(t *testing.T) {
	runs := []clahe.Timings{
		{Init: time.Millisecond, Stage1: 2 * time.Millisecond, Stage3: 4 * time.Millisecond, Total: 10 * time.Millisecond},
		{Init: 3 * time.Millisecond, Stage1: 4 * time.Millisecond, Stage2: 6 * time.Millisecond, Total: 20 * time.Millisecond},
	}
	want := clahe.Timings{
		Init:   2 * time.Millisecond,
		Stage1: 3 * time.Millisecond,
		Stage2: 3 * time.Millisecond,
		Stage3: 2 * time.Millisecond,
		Total:  15 * time.Millisecond,
	}
	if got := averageTimings(runs); got != want {
		t.Fatalf("averageTimings = %+v, want %+v", got, want)
	}
	if got := averageTimings(nil); got != (clahe.Timings{}) {
		t.Fatalf("averageTimings(nil) = %+v", got)
	}
}

func TestLatestRelease(t *testing.T) {
	rel := func(tag string, draft, pre bool, assets ...string) githubRelease {
		r := githubRelease{TagName: tag, Draft: draft, Prerelease: pre}
		for _, a := range assets {
			r.Assets = append(r.Assets, struct {
				Name               string `json:"name"`
				BrowserDownloadURL string `json:"browser_download_url"`
			}{Name: a, BrowserDownloadURL: "https://example.invalid/" + a})
		}
		return r
	}
	releases := []githubRelease{
		rel("v1.2.0", false, false, "clahe_linux_amd64"),
		rel("release-1.10.0", false, false, "checksums.txt", "clahe_darwin_arm64"),
		rel("v9.0.0", true, false),
		rel("v2.0.0-rc1", false, true),
		rel("nightly", false, false),
	}
	best := latestRelease(releases)
	if best == nil {
		t.Fatal("no release selected")
	}
	if !best.Version.Equals(semver.MustParse("1.10.0")) {
		t.Fatalf("version = %s, want 1.10.0", best.Version)
	}
	if best.AssetURL != "https://example.invalid/clahe_darwin_arm64" {
		t.Fatalf("asset = %s", best.AssetURL)
	}
	if latestRelease(releases[2:4]) != nil {
		t.Fatal("draft or prerelease selected")
	}
}

func TestParseVersion(t *testing.T) {
	for _, s := range []string{"1.0.0", "v1.0.0", " v0.1.0\n"} {
		if _, err := parseVersion(s); err != nil {
			t.Fatalf("parseVersion(%q): %v", s, err)
		}
	}
	if _, err := parseVersion("dev"); err == nil {
		t.Fatal("parseVersion(dev) succeeded")
	}
}
