package runtime

import "fmt"

// Action is a task action supported by some runtime.
type Action int

// Action constants.
const (
	ActionUnknown Action = iota
	ActionTransform
	ActionInfer
	ActionProfile
	ActionValidate
	ActionMetric
)

var actionNames = map[Action]string{
	ActionTransform: "transform",
	ActionInfer:     "infer",
	ActionProfile:   "profile",
	ActionValidate:  "validate",
	ActionMetric:    "metric",
}

var actionsByName = func() map[string]Action {
	m := make(map[string]Action, len(actionNames))
	for a, n := range actionNames {
		m[n] = a
	}
	return m
}()

// ParseAction resolves an action name.
func ParseAction(name string) (Action, error) {
	if a, ok := actionsByName[name]; ok {
		return a, nil
	}
	return ActionUnknown, fmt.Errorf("unknown action %q", name)
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown"
}
