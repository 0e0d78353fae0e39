package version

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/streamhub/streamhub/logger"
)

// Tag is set at build time via -ldflags
var Tag = "v0.3.0"

// overridable in tests
var releasesUrl = "https://api.github.com/repos/streamhub/streamhub/releases/latest"

type githubRelease struct {
	TagName string `json:"tag_name"`
}

func GetTag() string {
	return Tag
}

// CheckForUpdate returns the latest release tag if it is newer than the
// running build, or an empty string.
func CheckForUpdate(ctx context.Context) (string, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, releasesUrl, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return "", err
	}

	var release githubRelease
	if err := json.Unmarshal(body, &release); err != nil {
		return "", err
	}

	current, err := semver.NewVersion(Tag)
	if err != nil {
		logger.Logger.Error().Err(err).Str("tag", Tag).Msg("Failed to parse current version tag")
		return "", err
	}
	latest, err := semver.NewVersion(release.TagName)
	if err != nil {
		return "", err
	}

	if latest.GreaterThan(current) {
		return release.TagName, nil
	}
	return "", nil
}
