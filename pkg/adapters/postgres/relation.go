package postgres

import (
	"fmt"
	"strings"
)

// SQLScheme is the URL scheme of relational dataitem paths.
const SQLScheme = "sql://"

// Relation is a fully qualified table reference.
type Relation struct {
	Database string
	Schema   string
	Table    string
}

// ParseRelation parses "sql://{database}/{schema}/{table}".
func ParseRelation(path string) (Relation, error) {
	rest, ok := strings.CutPrefix(path, SQLScheme)
	if !ok {
		return Relation{}, fmt.Errorf("invalid relation path %q: missing %s prefix", path, SQLScheme)
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return Relation{}, fmt.Errorf("invalid relation path %q: expected database/schema/table", path)
	}
	for _, p := range parts {
		if p == "" {
			return Relation{}, fmt.Errorf("invalid relation path %q: empty segment", path)
		}
	}
	return Relation{Database: parts[0], Schema: parts[1], Table: parts[2]}, nil
}

// Path renders the relation as a sql:// path.
func (r Relation) Path() string {
	return SQLScheme + r.Database + "/" + r.Schema + "/" + r.Table
}
