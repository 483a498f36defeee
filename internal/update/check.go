// Package update asks GitHub whether a newer nusconsole release exists.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Release is the latest published version compared with the running one.
type Release struct {
	Latest  string
	Current string
	URL     string
}

// Newer reports whether the latest release is newer than the running version.
func (r *Release) Newer() bool {
	return r != nil && compareVersions(r.Latest, r.Current) > 0
}

// Checker queries the releases API of one repository.
type Checker struct {
	Owner, Repo string

	// BaseURL defaults to https://api.github.com.
	BaseURL string
	Client  *http.Client
}

type ghRelease struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Latest fetches the latest release and compares it with current.
func (c *Checker) Latest(ctx context.Context, current string) (*Release, error) {
	base := c.BaseURL
	if base == "" {
		base = "https://api.github.com"
	}
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", strings.TrimSuffix(base, "/"), c.Owner, c.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to check for updates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to check for updates: %s", resp.Status)
	}

	var rel ghRelease
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("failed to parse release: %w", err)
	}

	return &Release{
		Latest:  strings.TrimPrefix(rel.TagName, "v"),
		Current: strings.TrimPrefix(current, "v"),
		URL:     rel.HTMLURL,
	}, nil
}

// compareVersions compares major.minor.patch strings; >0 means a is newer.
func compareVersions(a, b string) int {
	ap, bp := parseVersion(a), parseVersion(b)
	for i := range ap {
		if ap[i] != bp[i] {
			return ap[i] - bp[i]
		}
	}
	return 0
}

// parseVersion splits "1.2.3" into [1 2 3]. Missing or malformed parts are 0,
// and a pre-release suffix such as "-rc1" is ignored.
func parseVersion(v string) [3]int {
	var parts [3]int
	v, _, _ = strings.Cut(v, "-")
	for i, s := range strings.SplitN(v, ".", 3) {
		n, _ := strconv.Atoi(s)
		parts[i] = n
	}
	return parts
}
