package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

const updateRepo = "Fepozopo/clahe"

// semverRe finds a semver substring like v1.2.3 or 1.2.3 inside a tag name.
var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

// parseVersion parses a version string with or without a leading 'v'.
func parseVersion(s string) (semver.Version, error) {
	v, err := semver.Parse(strings.TrimPrefix(strings.TrimSpace(s), "v"))
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return v, nil
}

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// latestRelease picks the highest published, non-prerelease semver release.
// It returns nil when no release qualifies.
func latestRelease(releases []githubRelease) *selfupdate.Release {
	var best *selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			// try the release name as a fallback
			if match = semverRe.FindString(r.Name); match == "" {
				continue
			}
		}
		v, err := parseVersion(match)
		if err != nil {
			continue
		}
		if best != nil && !v.GT(best.Version) {
			continue
		}
		best = &selfupdate.Release{Version: v, AssetURL: pickAsset(r)}
	}
	return best
}

// pickAsset prefers assets whose names look like platform binaries and falls
// back to the first asset.
func pickAsset(r githubRelease) string {
	for _, a := range r.Assets {
		if looksLikeBinary(a.Name) {
			return a.BrowserDownloadURL
		}
	}
	if len(r.Assets) > 0 {
		return r.Assets[0].BrowserDownloadURL
	}
	return ""
}

func looksLikeBinary(name string) bool {
	n := strings.ToLower(name)
	for _, k := range []string{"darwin", "linux", "windows", "amd64", "arm64"} {
		if strings.Contains(n, k) {
			return true
		}
	}
	return false
}

// detectLatest queries the GitHub Releases API. Tag names only need to
// contain a semver somewhere, which selfupdate.DetectLatest does not allow.
func detectLatest(repo string) (*selfupdate.Release, error) {
	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/releases", repo)
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(apiURL)
	if err != nil {
		return nil, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading github response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}
	var releases []githubRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("failed to decode github releases: %w", err)
	}
	return latestRelease(releases), nil
}

// PromptLine displays a prompt and reads a full line of input from the user.
func PromptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// CheckForUpdates compares the running version with the latest GitHub
// release and, after confirmation, replaces the executable.
func CheckForUpdates() error {
	fmt.Printf("Current version: %s\n", Version)
	latest, err := detectLatest(updateRepo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if latest == nil {
		fmt.Printf("No releases found for %s.\n", updateRepo)
		return nil
	}
	fmt.Printf("Latest version: %s\n", latest.Version)

	current, err := parseVersion(Version)
	if err != nil {
		// continue, any release counts as newer
		fmt.Printf("warning: %v\n", err)
	}
	if err == nil && !latest.Version.GT(current) {
		fmt.Printf("You are already running the latest version: %s.\n", current)
		return nil
	}
	if latest.AssetURL == "" {
		fmt.Printf("A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		return nil
	}

	answer, err := PromptLine(fmt.Sprintf("A new version (%s) is available. Update now? (y/N): ", latest.Version))
	if err != nil {
		return fmt.Errorf("failed reading input: %w", err)
	}
	if a := strings.ToLower(answer); a != "y" && a != "yes" {
		fmt.Println("Update cancelled.")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Printf("Updated to version %s. Restart clahe to use it.\n", latest.Version)
	return nil
}
