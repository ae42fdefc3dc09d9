package dbt

import "fmt"

// SelectSingleOutput returns the only entry of outputs.
func SelectSingleOutput(outputs []string) (string, error) {
	if len(outputs) != 1 {
		return "", newError(ErrInvalidOutputSpec, fmt.Sprintf("outputs must be a list of exactly one dataitem, got %d", len(outputs)), nil)
	}
	return outputs[0], nil
}
