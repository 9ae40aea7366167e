// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

// Package release resolves and downloads the ros2-apt-source package, which
// registers the ROS 2 apt repository and its signing key.
package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	DefaultAPIBase      = "https://api.github.com"
	DefaultDownloadBase = "https://github.com"
	DefaultRepository   = "ros-infrastructure/ros-apt-source"

	maxMetadataBytes = 1 << 20
)

// MetadataError reports a release API response that could not be used: not
// JSON, or without a usable tag.
type MetadataError struct {
	URL string
	Err error
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("release metadata from %s: %v", e.URL, e.Err)
}

func (e *MetadataError) Unwrap() error { return e.Err }

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Client talks to GitHub. The zero value is not usable; use NewClient.
type Client struct {
	HTTP         *http.Client
	APIBase      string
	DownloadBase string
	Repository   string
	UserAgent    string
}

// NewClient returns a client for the public GitHub endpoints.
func NewClient(userAgent string) *Client {
	return &Client{
		HTTP:         &http.Client{Timeout: 2 * time.Minute},
		APIBase:      DefaultAPIBase,
		DownloadBase: DefaultDownloadBase,
		Repository:   DefaultRepository,
		UserAgent:    userAgent,
	}
}

// LatestURL is the API endpoint describing the newest release.
func (c *Client) LatestURL() string {
	return fmt.Sprintf("%s/repos/%s/releases/latest", strings.TrimRight(c.APIBase, "/"), c.Repository)
}

// LatestTag returns tag_name of the newest release.
func (c *Client) LatestTag(ctx context.Context) (string, error) {
	url := c.LatestURL()
	resp, err := c.get(ctx, url, "application/vnd.github+json")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var rel struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetadataBytes)).Decode(&rel); err != nil {
		return "", &MetadataError{URL: url, Err: fmt.Errorf("decode response: %w", err)}
	}

	tag := strings.TrimSpace(rel.TagName)
	if err := validTag(tag); err != nil {
		return "", &MetadataError{URL: url, Err: err}
	}
	return tag, nil
}

func validTag(tag string) error {
	if tag == "" {
		return errors.New("response has no tag_name")
	}
	if strings.ContainsAny(tag, "/\\?#% \t\n") || strings.Contains(tag, "..") {
		return fmt.Errorf("tag_name %q is not usable in a download URL", tag)
	}
	return nil
}

// PackageFile is the .deb asset name for a tag and Ubuntu codename.
func PackageFile(tag, codename string) string {
	return fmt.Sprintf("ros2-apt-source_%s.%s_all.deb", tag, codename)
}

// PackageURL is the download location of the .deb for a tag and codename.
func (c *Client) PackageURL(tag, codename string) string {
	return fmt.Sprintf("%s/%s/releases/download/%s/%s",
		strings.TrimRight(c.DownloadBase, "/"), c.Repository, tag, PackageFile(tag, codename))
}

// Download saves url into a new temp file in dir (os.TempDir when empty) and
// returns its path. The caller removes the file.
func (c *Client) Download(ctx context.Context, url, dir string) (string, error) {
	resp, err := c.get(ctx, url, "application/octet-stream")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	f, err := os.CreateTemp(dir, "ros2-apt-source-*.deb")
	if err != nil {
		return "", fmt.Errorf("create download file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close download file: %w", err)
	}
	return f.Name(), nil
}

func (c *Client) get(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxMetadataBytes))
		resp.Body.Close()
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}
