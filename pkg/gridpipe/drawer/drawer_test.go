package drawer_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-gridpipe/pkg/gridpipe/drawer"
	"github.com/askiada/go-gridpipe/pkg/gridpipe/measure"
	"github.com/askiada/go-gridpipe/pkg/gridpipe/model"
)

func TestRunDrawer(t *testing.T) {
	t.Parallel()

	fileName := filepath.Join(t.TempDir(), "pipeline.dot")
	msr := measure.NewDefaultMeasure()
	measureOpt := measure.RunMeasure(msr)
	drawerOpt := drawer.RunDrawer(drawer.NewDOTDrawer(fileName), msr)

	stepA := &model.StepInfo{Name: "A", Params: []string{"p"}}
	stepB := &model.StepInfo{Name: "B", Params: []string{"q"}, Index: 1}

	for _, opt := range []model.RunOption{measureOpt, drawerOpt} {
		require.NoError(t, opt.New())
		require.NoError(t, opt.PrepareStep(model.StartStep, stepA))
		require.NoError(t, opt.PrepareStep(stepA, stepB))
	}

	require.NoError(t, measureOpt.OnStepOutput("x", stepA, "p=1", time.Millisecond))
	require.NoError(t, measureOpt.OnStepOutput("x", stepB, "p=1;q=1", 3*time.Millisecond))
	require.NoError(t, measureOpt.OnStepOutput("x", stepB, "p=1;q=2", 3*time.Millisecond))

	require.NoError(t, measureOpt.Finish())
	require.NoError(t, drawerOpt.Finish())

	content, err := os.ReadFile(fileName)
	require.NoError(t, err)

	got := string(content)
	assert.Contains(t, got, "strict digraph")
	assert.Contains(t, got, `"start" -> "A"`)
	assert.Contains(t, got, `"A" -> "B"`)
	assert.Contains(t, got, `"B" -> "end"`)
	assert.Contains(t, got, `xlabel="3ms x2"`)
	assert.Contains(t, got, `color="#f00000"`)
	assert.Contains(t, got, `color="#0000f0"`)
}

func TestDOTDrawerDuplicateStep(t *testing.T) {
	t.Parallel()

	d := drawer.NewDOTDrawer(filepath.Join(t.TempDir(), "pipeline.dot"))
	require.NoError(t, d.AddStep("A"))
	assert.Error(t, d.AddStep("A"))
}

func TestDOTDrawerCycle(t *testing.T) {
	t.Parallel()

	d := drawer.NewDOTDrawer(filepath.Join(t.TempDir(), "pipeline.dot"))
	require.NoError(t, d.AddStep("A"))
	require.NoError(t, d.AddStep("B"))
	require.NoError(t, d.AddLink("A", "B"))
	assert.Error(t, d.AddLink("B", "A"))
}

func TestDOTDrawerWrite(t *testing.T) {
	t.Parallel()

	d := drawer.NewDOTDrawer("unused.dot")
	require.NoError(t, d.AddStep("A"))
	require.NoError(t, d.AddStep("B"))
	require.NoError(t, d.AddLink("A", "B"))

	var buf bytes.Buffer
	require.NoError(t, d.Write(&buf))
	assert.Contains(t, buf.String(), `rankdir="LR"`)
	assert.Contains(t, buf.String(), `"A" -> "B"`)
}
