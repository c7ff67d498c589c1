// Utilities for building playlist request headers from config lines or a cURL command.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
)

var (
	headerFlag = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	cookieFlag = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
)

// RequestHeaders holds extra headers and a cookie sent with every playlist request.
type RequestHeaders struct {
	Headers map[string]string
	Cookie  string
}

// ParseHeaders parses "Key: Value" lines. A Cookie line populates [RequestHeaders.Cookie].
func ParseHeaders(lines []string) (*RequestHeaders, error) {
	h := &RequestHeaders{Headers: make(map[string]string)}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !h.add(line) {
			return nil, fmt.Errorf("%w: malformed header %q", ErrInvalidInput, line)
		}
	}
	return h, nil
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts headers.
func ParseCurlFile(filepath string) (*RequestHeaders, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseCurlCommand(content)
}

// ParseCurlCommand extracts -H headers and the -b cookie from a cURL command, e.g. one copied from browser DevTools.
//
// A -b cookie takes precedence over a Cookie header.
func ParseCurlCommand(data []byte) (*RequestHeaders, error) {
	curlCmd := strings.ReplaceAll(string(data), "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	h := &RequestHeaders{Headers: make(map[string]string)}
	for _, match := range headerFlag.FindAllStringSubmatch(curlCmd, -1) {
		h.add(firstGroup(match))
	}

	if match := cookieFlag.FindStringSubmatch(curlCmd); match != nil {
		h.Cookie = firstGroup(match)
	}

	if len(h.Headers) == 0 && h.Cookie == "" {
		return nil, fmt.Errorf("no headers found in curl command")
	}
	return h, nil
}

// Merge copies other's headers over h. A non-empty cookie in other replaces h's.
func (h *RequestHeaders) Merge(other *RequestHeaders) {
	if other == nil {
		return
	}
	if h.Headers == nil {
		h.Headers = make(map[string]string, len(other.Headers))
	}
	for k, v := range other.Headers {
		h.Headers[k] = v
	}
	if other.Cookie != "" {
		h.Cookie = other.Cookie
	}
}

// Apply sets the headers and cookie on req.
func (h *RequestHeaders) Apply(req *http.Request) {
	if h == nil {
		return
	}
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	if h.Cookie != "" {
		req.Header.Set("Cookie", h.Cookie)
	}
}

// Lines renders the headers as sorted "Key: Value" lines, cookie last.
func (h *RequestHeaders) Lines() []string {
	var lines []string
	for key, value := range h.Headers {
		lines = append(lines, fmt.Sprintf("%s: %s", key, value))
	}
	sort.Strings(lines)
	if h.Cookie != "" {
		lines = append(lines, fmt.Sprintf("Cookie: %s", h.Cookie))
	}
	return lines
}

// add parses one "Key: Value" line, reporting whether it was well formed.
func (h *RequestHeaders) add(line string) bool {
	key, value, ok := strings.Cut(line, ":")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return false
	}
	value = strings.TrimSpace(value)
	if strings.EqualFold(key, "cookie") {
		if h.Cookie == "" {
			h.Cookie = value
		}
		return true
	}
	h.Headers[key] = value
	return true
}

func firstGroup(match []string) string {
	if match[1] != "" {
		return match[1]
	}
	return match[2]
}
