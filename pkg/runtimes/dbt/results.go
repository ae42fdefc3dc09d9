package dbt

import (
	"encoding/json"
	"time"
)

// ExecutionResult is the outcome of one dbt invocation.
type ExecutionResult struct {
	Results     []NodeResult `json:"results"`
	ElapsedTime float64      `json:"elapsed_time"`
}

// Last returns the terminal node result, if any.
func (r ExecutionResult) Last() (NodeResult, bool) {
	if len(r.Results) == 0 {
		return NodeResult{}, false
	}
	return r.Results[len(r.Results)-1], true
}

// NodeResult is the outcome of a single dbt node.
type NodeResult struct {
	UniqueID        string         `json:"unique_id"`
	Status          string         `json:"status"`
	Message         string         `json:"message,omitempty"`
	ExecutionTime   float64        `json:"execution_time"`
	AdapterResponse map[string]any `json:"adapter_response,omitempty"`
	Timing          []TimingSpan   `json:"timing"`
	Node            Node           `json:"node"`
}

// Node describes the model behind a result.
type Node struct {
	Name         string `json:"name"`
	PackageName  string `json:"package_name"`
	RelationName string `json:"relation_name"`
	RawCode      string `json:"raw_code"`
	CompiledCode string `json:"compiled_code"`
}

// TimingSpan is a named phase of a node execution.
type TimingSpan struct {
	Name        string    `json:"name"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Document renders the result as a plain document.
func (n NodeResult) Document() map[string]any {
	b, err := json.Marshal(n)
	if err != nil {
		return map[string]any{"unique_id": n.UniqueID, "status": n.Status}
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return map[string]any{"unique_id": n.UniqueID, "status": n.Status}
	}
	return doc
}
