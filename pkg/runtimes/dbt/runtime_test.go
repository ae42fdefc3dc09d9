package dbt

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/digitalhub-labs/digitalhub/internal/testutil"
	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/digitalhub-labs/digitalhub/pkg/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor returns a fixed result and records the generated project.
type fakeExecutor struct {
	result ExecutionResult
	err    error
	dir    string
	output string
	sql    string
}

func (f *fakeExecutor) Execute(_ context.Context, dir, output string) (ExecutionResult, error) {
	f.dir = dir
	f.output = output
	if data, err := os.ReadFile(filepath.Join(dir, "models", output+".sql")); err == nil { //nolint:gosec // test
		f.sql = string(data)
	}
	return f.result, f.err
}

func customersResult() ExecutionResult {
	return ExecutionResult{Results: []NodeResult{{
		UniqueID: "model.my_project.customers.v1",
		Status:   StatusSuccess,
		Timing: []TimingSpan{
			{Name: PhaseCompile, StartedAt: t0, CompletedAt: t1},
			{Name: PhaseExecute, StartedAt: t1, CompletedAt: t2},
		},
		Node: Node{
			Name:         "customers",
			PackageName:  "my_project",
			RelationName: `"db"."public"."customers_v1"`,
			RawCode:      "SELECT id, name FROM src",
			CompiledCode: "SELECT id, name FROM src",
		},
	}}}
}

func newTransformRun(t *testing.T, spec map[string]any) *core.Run {
	t.Helper()
	fn, err := core.NewFunction(core.FunctionConfig{Project: "my-project", Name: "customers-fn", Kind: Kind, Spec: spec})
	require.NoError(t, err)
	task, err := core.NewTask(core.TaskConfig{Function: fn, Action: TaskTransform})
	require.NoError(t, err)
	run, err := core.NewRun(core.RunConfig{
		Task: task,
		Spec: runtime.MergeSpecs(fn.Spec, task.Spec, map[string]any{
			"outputs": map[string]any{"dataitems": []string{"customers"}},
		}),
	})
	require.NoError(t, err)
	return run
}

func newTestRuntime(t *testing.T, target *mockTarget, exec Executor) (*Runtime, string) {
	t.Helper()
	workDir := t.TempDir()
	rt, err := New(runtime.Deps{
		Logger:   testutil.NewTestLogger(t),
		Catalog:  newTestCatalog(t),
		Postgres: targetConfig,
		WorkDir:  workDir,
	}, WithExecutor(exec), WithConnector(target), WithIDGenerator(func() string { return "1" }))
	require.NoError(t, err)
	return rt, workDir
}

func TestRuntime_Run(t *testing.T) {
	ctx := context.Background()
	target := newMockTarget(t)
	target.expectSample("customers_v1")
	target.mock.ExpectClose()
	exec := &fakeExecutor{result: customersResult()}
	rt, workDir := newTestRuntime(t, target, exec)

	spec, err := NewFunctionSpec(core.Raw("SELECT id, name FROM src"))
	require.NoError(t, err)
	run := newTransformRun(t, spec)

	status, err := rt.Run(ctx, run)
	require.NoError(t, err)

	assert.Equal(t, core.StateCompleted, status.State)
	require.Len(t, status.Outputs.DataItems, 1)
	assert.Equal(t, "store://my-project/dataitems/dataitem/customers:1", status.Outputs.DataItems[0].Key)
	assert.Equal(t, "success", status.Results["status"])
	assert.Contains(t, status.Results, "timings")

	assert.Equal(t, "customers", exec.output)
	assert.Equal(t, "SELECT id, name FROM src", exec.sql)

	items, err := rt.Results(ctx, status)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "sql://db/public/customers_v1", items[0].Spec.Path)
	assert.Equal(t, []core.SchemaField{
		{Name: "id", Type: "integer"},
		{Name: "name", Type: "string"},
	}, items[0].Spec.Schema.Fields)

	entries, err := os.ReadDir(workDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "working directory is removed after the run")
	assert.NoError(t, target.mock.ExpectationsWereMet())
}

func TestRuntime_Run_Failures(t *testing.T) {
	spec, err := NewFunctionSpec(core.Raw("SELECT 1"))
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(*core.Run)
		exec    *fakeExecutor
		wantErr error
	}{
		{
			name:    "no outputs",
			mutate:  func(r *core.Run) { delete(r.Spec, "outputs") },
			exec:    &fakeExecutor{result: customersResult()},
			wantErr: ErrInvalidOutputSpec,
		},
		{
			name: "two outputs",
			mutate: func(r *core.Run) {
				r.Spec["outputs"] = map[string]any{"dataitems": []string{"a", "b"}}
			},
			exec:    &fakeExecutor{result: customersResult()},
			wantErr: ErrInvalidOutputSpec,
		},
		{
			name:    "empty results",
			exec:    &fakeExecutor{},
			wantErr: ErrNotFound,
		},
		{
			name: "failed model",
			exec: &fakeExecutor{result: func() ExecutionResult {
				r := customersResult()
				r.Results[0].Status = "error"
				return r
			}()},
			wantErr: ErrExecutionFailed,
		},
		{
			name: "wrong output",
			exec: &fakeExecutor{result: func() ExecutionResult {
				r := customersResult()
				r.Results[0].Node.Name = "orders"
				return r
			}()},
			wantErr: ErrNameMismatch,
		},
		{
			name:    "executor error",
			exec:    &fakeExecutor{err: assert.AnError},
			wantErr: assert.AnError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, _ := newTestRuntime(t, newMockTarget(t), tt.exec)
			run := newTransformRun(t, spec)
			if tt.mutate != nil {
				tt.mutate(run)
			}

			status, err := rt.Run(context.Background(), run)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, core.StateError, status.State)
			assert.NotEmpty(t, status.Message)
		})
	}
}

func TestRuntime_Run_ActionNotAllowed(t *testing.T) {
	rt, _ := newTestRuntime(t, newMockTarget(t), &fakeExecutor{})
	run := &core.Run{Spec: map[string]any{"task": "dbt+validate://fn:1"}}

	status, err := rt.Run(context.Background(), run)
	var notAllowed *runtime.ActionNotAllowedError
	require.ErrorAs(t, err, &notAllowed)
	assert.Equal(t, core.StateError, status.State)
}

func TestRuntime_Build(t *testing.T) {
	rt, _ := newTestRuntime(t, newMockTarget(t), &fakeExecutor{})
	merged := rt.Build(
		map[string]any{"sql": "fn"},
		map[string]any{"function": "dbt+transform://fn:1"},
		map[string]any{"sql": "run", "outputs": map[string]any{"dataitems": []string{"x"}}},
	)
	assert.Equal(t, "run", merged["sql"])
	assert.Equal(t, "dbt+transform://fn:1", merged["function"])
}

func TestNew_RequiresCatalog(t *testing.T) {
	_, err := New(runtime.Deps{})
	assert.Error(t, err)
}

func TestRegistered(t *testing.T) {
	assert.True(t, runtime.IsRegistered(Kind))
	rt, err := runtime.New(Kind, runtime.Deps{Catalog: newTestCatalog(t)})
	require.NoError(t, err)
	assert.IsType(t, &Runtime{}, rt)
}
