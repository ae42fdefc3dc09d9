package commands

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/digitalhub-labs/digitalhub/internal/cli/testutil"
	"github.com/digitalhub-labs/digitalhub/internal/cli/output"
	tlog "github.com/digitalhub-labs/digitalhub/internal/testutil"
	"github.com/digitalhub-labs/digitalhub/pkg/catalog/sqlite"
	"github.com/digitalhub-labs/digitalhub/pkg/core"
	"github.com/digitalhub-labs/digitalhub/pkg/runtime"
	"github.com/digitalhub-labs/digitalhub/pkg/runtimes/dbt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoRuntime completes every run, reporting the merged spec as results.
type echoRuntime struct {
	err error
}

func (e *echoRuntime) Build(function, task, run map[string]any) map[string]any {
	return runtime.MergeSpecs(function, task, run)
}

func (e *echoRuntime) Run(_ context.Context, run *core.Run) (core.RunStatus, error) {
	if e.err != nil {
		return core.FailedStatus(e.err), e.err
	}
	return core.RunStatus{
		State: core.StateCompleted,
		Outputs: core.Outputs{
			DataItems: []core.EntityInfo{{Key: "store://demo/dataitems/dataitem/out:1", ID: "1", Name: "out", Kind: "dataitem"}},
		},
		Results: map[string]any{"spec": run.Spec},
	}, nil
}

var echo = &echoRuntime{}

func init() {
	runtime.Register("echo", func(runtime.Deps) (runtime.Runtime, error) { return echo, nil })
}

func TestLoadRunFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "run.yaml", `project: demo
function:
  name: customers
  kind: dbt
  sql: SELECT * FROM raw
task:
  action: transform
run:
  inputs:
    dataitems: [raw]
  outputs:
    dataitems: [customers]
`)

	rf, err := LoadRunFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", rf.Project)
	assert.Equal(t, "customers", rf.Function.Name)
	assert.Equal(t, "transform", rf.Task.Action)
	assert.Equal(t, map[string]any{"dataitems": []any{"customers"}}, rf.Run["outputs"])

	fn, task, err := rf.entities()
	require.NoError(t, err)
	assert.Equal(t, core.EncodeString("SELECT * FROM raw"), fn.Spec["sql"])
	assert.Equal(t, "dbt+transform", task.Kind)
	assert.Equal(t, fn.TaskString("transform"), task.FunctionString())
}

func TestLoadRunFile_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"invalid yaml", "project: [", "failed to parse run file"},
		{"missing project", "task:\n  action: transform\n", "project is required"},
		{"missing action", "project: demo\n", "task.action is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFile(t, t.TempDir(), "run.yaml", tt.content)
			_, err := LoadRunFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestRunFile_Entities(t *testing.T) {
	tests := []struct {
		name      string
		rf        RunFile
		check     func(t *testing.T, fn *core.Function, task *core.Task)
		errSubstr string
	}{
		{
			name: "dbt base64 sql kept encoded",
			rf: RunFile{
				Project:  "demo",
				Function: FunctionFile{Name: "f", Kind: dbt.Kind, SQL: core.EncodeString("SELECT 1"), SQLEncoding: "base64"},
				Task:     TaskFile{Action: "transform"},
			},
			check: func(t *testing.T, fn *core.Function, _ *core.Task) {
				assert.Equal(t, core.EncodeString("SELECT 1"), fn.Spec["sql"])
			},
		},
		{
			name: "dbt without sql",
			rf: RunFile{
				Project:  "demo",
				Function: FunctionFile{Name: "f", Kind: dbt.Kind},
				Task:     TaskFile{Action: "transform"},
			},
			errSubstr: "spec.sql is required",
		},
		{
			name: "dbt invalid base64",
			rf: RunFile{
				Project:  "demo",
				Function: FunctionFile{Name: "f", Kind: dbt.Kind, SQL: "%%%", SQLEncoding: "base64"},
				Task:     TaskFile{Action: "transform"},
			},
			errSubstr: "illegal base64",
		},
		{
			name: "nefertem task defaults",
			rf: RunFile{
				Project:  "demo",
				Function: FunctionFile{Name: "q", Kind: "nefertem", Spec: map[string]any{"constraints": []any{}}},
				Task:     TaskFile{Action: "validate", Spec: map[string]any{"framework": "frictionless"}},
			},
			check: func(t *testing.T, fn *core.Function, task *core.Task) {
				assert.Contains(t, fn.Spec, "constraints")
				assert.Equal(t, "frictionless", task.Spec["framework"])
				assert.Equal(t, 1, task.Spec["num_worker"])
				assert.Equal(t, "nefertem+validate", task.Kind)
			},
		},
		{
			name: "nefertem without framework",
			rf: RunFile{
				Project:  "demo",
				Function: FunctionFile{Name: "q", Kind: "nefertem"},
				Task:     TaskFile{Action: "profile"},
			},
			errSubstr: "spec.framework is required",
		},
		{
			name: "missing function name",
			rf: RunFile{
				Project:  "demo",
				Function: FunctionFile{Kind: "echo"},
				Task:     TaskFile{Action: "run"},
			},
			errSubstr: "name is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, task, err := tt.rf.entities()
			if tt.errSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}
			require.NoError(t, err)
			tt.check(t, fn, task)
		})
	}
}

func newMemoryCatalog(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), ":memory:", tlog.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func echoRunFile() *RunFile {
	return &RunFile{
		Project:  "demo",
		Function: FunctionFile{Name: "f", Kind: "echo", Spec: map[string]any{"a": 1}},
		Task:     TaskFile{Action: "run", Spec: map[string]any{"b": 2}},
		Run:      map[string]any{"a": 3},
	}
}

func TestExecuteRun(t *testing.T) {
	ctx := context.Background()
	cat := newMemoryCatalog(t)

	run, err := executeRun(ctx, cat, runtime.Deps{Catalog: cat}, echoRunFile(), tlog.NewTestLogger(t))
	require.NoError(t, err)
	require.NotNil(t, run)

	assert.Equal(t, core.StateCompleted, run.Status.State)
	spec, ok := run.Status.Results["spec"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 3, spec["a"], "run spec overrides function spec")
	assert.Equal(t, 2, spec["b"])

	saved, err := cat.GetRun(ctx, "demo", run.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StateCompleted, saved.Status.State)
	assert.Len(t, saved.Status.Outputs.DataItems, 1)
}

func TestExecuteRun_Failure(t *testing.T) {
	ctx := context.Background()
	cat := newMemoryCatalog(t)
	echo.err = errors.New("boom")
	t.Cleanup(func() { echo.err = nil })

	run, err := executeRun(ctx, cat, runtime.Deps{Catalog: cat}, echoRunFile(), tlog.NewTestLogger(t))
	require.Error(t, err)
	require.NotNil(t, run)
	assert.Equal(t, core.StateError, run.Status.State)

	saved, err := cat.GetRun(ctx, "demo", run.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StateError, saved.Status.State)
	assert.Equal(t, "boom", saved.Status.Message)
}

func TestExecuteRun_UnknownKind(t *testing.T) {
	cat := newMemoryCatalog(t)
	rf := echoRunFile()
	rf.Function.Kind = "spark"

	run, err := executeRun(context.Background(), cat, runtime.Deps{Catalog: cat}, rf, nil)
	require.Error(t, err)
	assert.Nil(t, run)

	var unknown *runtime.UnknownRuntimeError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "spark", unknown.Kind)
}

func TestRenderRun(t *testing.T) {
	run := &core.Run{
		ID:   "r1",
		Spec: map[string]any{"task": "echo+run://f:1"},
		Status: core.RunStatus{
			State: core.StateCompleted,
			Outputs: core.Outputs{
				DataItems: []core.EntityInfo{{Key: "store://demo/dataitems/dataitem/out:1", ID: "1", Name: "out", Kind: "dataitem"}},
				Artifacts: []core.EntityInfo{{Key: "store://demo/artifacts/artifact/report:2", ID: "2", Name: "report", Kind: "artifact"}},
			},
		},
	}

	tr := testutil.NewTestRendererText()
	require.NoError(t, renderRun(tr.Renderer, run))
	out := tr.Output()
	assert.Contains(t, out, "Run r1")
	assert.Contains(t, out, "echo+run://f:1")
	assert.Contains(t, out, "COMPLETED")
	assert.Contains(t, out, "store://demo/dataitems/dataitem/out:1")
	assert.Contains(t, out, "report")
	testutil.AssertNoANSI(t, out)

	tj := testutil.NewTestRenderer(output.ModeAuto, false)
	require.NoError(t, renderRun(tj.Renderer, run))
	assert.Contains(t, tj.Output(), fmt.Sprintf("%q: %q", "id", "r1"))
}
