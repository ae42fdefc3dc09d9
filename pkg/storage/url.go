package storage

import (
	"fmt"
	"strings"
)

// Scheme is the URL scheme of object store paths.
const Scheme = "s3://"

// Location is a parsed s3:// URL.
type Location struct {
	Bucket string
	Key    string
}

// String renders the location as an s3:// URL.
func (l Location) String() string {
	return Scheme + l.Bucket + "/" + l.Key
}

// ParseURL parses "s3://bucket/key".
func ParseURL(raw string) (Location, error) {
	rest, ok := strings.CutPrefix(raw, Scheme)
	if !ok {
		return Location{}, fmt.Errorf("invalid object url %q: missing %s prefix", raw, Scheme)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return Location{}, fmt.Errorf("invalid object url %q: expected %sbucket/key", raw, Scheme)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// JoinKey joins key segments with "/", dropping empty ones.
func JoinKey(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}
