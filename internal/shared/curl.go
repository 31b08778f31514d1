// Utilities for parsing cURL commands.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// CurlHeaders represents headers parsed from a cURL command.
type CurlHeaders struct {
	Headers map[string]string
}

// ParseCurlFile reads a file containing a cURL command and extracts headers.
func ParseCurlFile(filepath string) (*CurlHeaders, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

// ParseCurlCommand parses a cURL command string and extracts headers.
func ParseCurlCommand(data []byte) (*CurlHeaders, error) {
	curlCmd := string(data)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)

	headerRegex := regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	matches := headerRegex.FindAllStringSubmatch(curlCmd, -1)

	for _, match := range matches {
		var headerLine string
		if match[1] != "" {
			headerLine = match[1]
		} else {
			headerLine = match[2]
		}

		parts := strings.SplitN(headerLine, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			headers[key] = value
		}
	}

	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}

	return &CurlHeaders{Headers: headers}, nil
}

// BearerToken extracts the bearer access token from the Authorization header.
//
// Lets a user copy a request from their browser's network inspector as cURL
// and reuse the web player's session token directly.
func (c *CurlHeaders) BearerToken() (string, error) {
	for key, value := range c.Headers {
		if !strings.EqualFold(key, "authorization") {
			continue
		}
		token := strings.TrimSpace(value)
		if rest, ok := strings.CutPrefix(token, "Bearer "); ok {
			token = strings.TrimSpace(rest)
		}
		if token == "" {
			break
		}
		return token, nil
	}
	return "", fmt.Errorf("%w: no authorization header in curl command", ErrMissingCredentials)
}
