// Package core defines the shared entity model of the platform.
//
// This package contains:
//   - Entity types (Project, Function, Workflow, Task, Run, DataItem, Artifact)
//   - Entity keys and reference descriptors (Key, EntityInfo)
//   - Lifecycle states (State) and run statuses (RunStatus)
//   - The Encoded/Raw source value used for embedded code
//
// Every entity is built through a validating constructor that takes an
// explicit configuration struct. Constructors fail fast with a *FieldError
// naming the missing field.
//
// The Golden Rule: pkg/core imports ONLY stdlib and github.com/google/uuid.
// All other packages depend on core, not the reverse.
package core
