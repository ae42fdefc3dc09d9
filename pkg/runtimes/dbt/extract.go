package dbt

import (
	"fmt"
	"strings"
	"time"

	"github.com/digitalhub-labs/digitalhub/pkg/adapters/postgres"
	"github.com/digitalhub-labs/digitalhub/pkg/core"
)

// Timing phases reported by dbt.
const (
	PhaseCompile = "compile"
	PhaseExecute = "execute"
)

// ParsedResult is the information extracted from a validated node.
// RawCode and CompiledCode are base64 encoded.
type ParsedResult struct {
	Name         string
	StoragePath  string
	RawCode      string
	CompiledCode string
	Timings      Timings
}

// Timings pairs the compile and execute phases of a node.
type Timings struct {
	Compile Phase `json:"compile"`
	Execute Phase `json:"execute"`
}

// Document renders the timings as a plain document.
func (t Timings) Document() map[string]any {
	return map[string]any{
		PhaseCompile: t.Compile.Document(),
		PhaseExecute: t.Execute.Document(),
	}
}

// Phase is one timing span rendered as text.
type Phase struct {
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at"`
}

// Document renders the phase as a plain document.
func (p Phase) Document() map[string]any {
	return map[string]any{"started_at": p.StartedAt, "completed_at": p.CompletedAt}
}

// Extract derives the storage path, encoded code and timings of a node.
func Extract(node NodeResult) (ParsedResult, error) {
	path, err := DerivePath(node.Node.RelationName)
	if err != nil {
		return ParsedResult{}, err
	}
	timings, err := ExtractTimings(node.Timing)
	if err != nil {
		return ParsedResult{}, err
	}
	return ParsedResult{
		Name:         node.Node.Name,
		StoragePath:  path,
		RawCode:      core.EncodeString(node.Node.RawCode),
		CompiledCode: core.EncodeString(node.Node.CompiledCode),
		Timings:      timings,
	}, nil
}

// DerivePath converts a relation identifier such as "db"."public"."t" into
// sql://db/public/t.
func DerivePath(relation string) (string, error) {
	parts := strings.Split(strings.ReplaceAll(relation, `"`, ""), ".")
	if len(parts) != 3 {
		return "", newError(ErrPathParse, fmt.Sprintf("malformed relation %q: expected database.schema.table", relation), nil)
	}
	for _, p := range parts {
		if p == "" {
			return "", newError(ErrPathParse, fmt.Sprintf("malformed relation %q: empty component", relation), nil)
		}
	}
	return postgres.SQLScheme + strings.Join(parts, "/"), nil
}

// ExtractTimings returns the first compile and first execute spans.
func ExtractTimings(spans []TimingSpan) (Timings, error) {
	var compile, execute *TimingSpan
	for i := range spans {
		switch spans[i].Name {
		case PhaseCompile:
			if compile == nil {
				compile = &spans[i]
			}
		case PhaseExecute:
			if execute == nil {
				execute = &spans[i]
			}
		}
	}
	if compile == nil {
		return Timings{}, newError(ErrTimingParse, "missing compile timing", nil)
	}
	if execute == nil {
		return Timings{}, newError(ErrTimingParse, "missing execute timing", nil)
	}
	return Timings{Compile: phaseOf(*compile), Execute: phaseOf(*execute)}, nil
}

func phaseOf(s TimingSpan) Phase {
	return Phase{StartedAt: formatTimestamp(s.StartedAt), CompletedAt: formatTimestamp(s.CompletedAt)}
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
