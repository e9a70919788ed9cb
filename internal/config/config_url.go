package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// validateHTTPURL validates that a URL is properly formatted for HTTP/HTTPS services.
// Validates: scheme (http/https), host present, no paths or query params.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}

	// Allow trailing slash but no other paths
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		return fmt.Errorf("%s should be base URL only, remove path: %s", fieldName, parsedURL.Path)
	}

	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}

	return nil
}

// containerFilesystemMarker, when present in the environment, indicates the
// daemon is running inside a container alongside the host's Docker socket
// (rather than on bare metal), so "localhost" in an operator-supplied URL
// actually means the container host, not the container itself.
const containerFilesystemMarker = "RUNNING_IN_CONTAINER"

// RewriteContainerHost rewrites a "localhost"/"127.0.0.1" host in rawURL to
// the container-host alias when running under a container filesystem, per
// spec §6's environment rewriting rule. Outside a container it returns
// rawURL unchanged.
func RewriteContainerHost(rawURL string) string {
	if rawURL == "" || !runningInContainer() {
		return rawURL
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	host := parsed.Hostname()
	if host != "localhost" && host != "127.0.0.1" {
		return rawURL
	}

	alias := containerHostAlias()
	if parsed.Port() != "" {
		parsed.Host = alias + ":" + parsed.Port()
	} else {
		parsed.Host = alias
	}
	return parsed.String()
}

var windowsDrivePath = regexp.MustCompile(`(?i)^([a-z]):[/\\](.*)$`)

// RewriteWindowsTransferPath rewrites a Windows drive path (e.g. "X:/Music")
// configured for the transfer daemon's filesystem root into the bind-mount
// path a Linux container sees it under, per spec §6. Non-Windows-shaped
// paths pass through unchanged.
func RewriteWindowsTransferPath(path string) string {
	if path == "" || !runningInContainer() {
		return path
	}

	m := windowsDrivePath.FindStringSubmatch(path)
	if m == nil {
		return path
	}

	drive := strings.ToLower(m[1])
	rest := strings.ReplaceAll(m[2], `\`, "/")
	return fmt.Sprintf("/host/mnt/%s/%s", drive, rest)
}

func runningInContainer() bool {
	return getEnv(containerFilesystemMarker, "") != ""
}

// containerHostAlias returns the DNS name a container uses to reach the
// Docker host. Docker Desktop and recent Docker Engine releases both expose
// this alias; it is the conventional rewrite target, matching the teacher's
// own container-networking helpers.
func containerHostAlias() string {
	return "host.docker.internal"
}
