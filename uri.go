package fypapp

import (
	"fmt"
	"strings"
)

const atScheme = "at://"

// ParseAtURI splits an at://authority/collection/rkey URI into its
// three components.
func ParseAtURI(uri string) (authority, collection, rkey string, err error) {
	if !strings.HasPrefix(uri, atScheme) {
		return "", "", "", fmt.Errorf("unsupported uri scheme")
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, atScheme), "/", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("invalid at uri: %s", uri)
	}
	return parts[0], parts[1], parts[2], nil
}

// ComposeAtURI builds the at:// URI for a record.
func ComposeAtURI(authority, collection, rkey string) string {
	return atScheme + authority + "/" + collection + "/" + rkey
}
