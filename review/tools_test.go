package review

import (
	"context"
	"testing"

	"github.com/smallnest/flowgraph/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFunctions(t *testing.T) {
	code := "def a():\n    pass\n\n  def b(x):\r\n    return x\nclass C:\n    def method(self): pass\n"
	assert.Equal(t, []string{"def a():", "def b(x):", "def method(self): pass"}, ExtractFunctions(code))
	assert.Empty(t, ExtractFunctions(""))
}

func TestComplexityScore(t *testing.T) {
	assert.InDelta(t, 0.2, ComplexityScore(0), 1e-9)
	assert.InDelta(t, 0.5, ComplexityScore(3), 1e-9)
	assert.Equal(t, 1.0, ComplexityScore(20))
}

func TestDetectBasicIssues(t *testing.T) {
	assert.Equal(t, []string{IssueDebugPrint, IssueTODO}, DetectBasicIssues("print('x')  # todo"))
	assert.Equal(t, []string{IssueTODO}, DetectBasicIssues("# ToDo later"))
	assert.Empty(t, DetectBasicIssues("return 1"))
}

func TestSuggestImprovements(t *testing.T) {
	assert.Equal(t, []string{SuggestRefactor, SuggestResolve}, SuggestImprovements(0.8, 2))
	assert.Equal(t, []string{SuggestMoreTests}, SuggestImprovements(0.3, 0))
}

func TestQualityScore(t *testing.T) {
	assert.Equal(t, 0.5, QualityScore(0.3, 2, 1))
	assert.Equal(t, 0.0, QualityScore(0.9, 5, 1))
	assert.Equal(t, 1.0, QualityScore(0.0, 0, 0))
	assert.Equal(t, 0.9, QualityScore(0.3, 0, 0))
}

func TestTools_AcceptDecodedJSON(t *testing.T) {
	ctx := context.Background()
	registry, err := NewToolRegistry()
	require.NoError(t, err)

	out, err := registry.Call(ctx, ToolCheckComplexity, map[string]any{"functions": []any{"def a():", "def b():"}})
	require.NoError(t, err)
	assert.InDelta(t, 0.4, out["complexity_score"], 1e-9)

	out, err = registry.Call(ctx, ToolEvaluateQuality, map[string]any{
		"complexity_score": 0.3,
		"issue_count":      float64(1),
		"suggestions":      []any{"x"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.6, out["quality_score"])

	out, err = registry.Call(ctx, ToolEvaluateQuality, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, 0.7, out["quality_score"])
}

func TestNewToolRegistry_RejectsClash(t *testing.T) {
	_, err := NewToolRegistry(graph.NewTool(ToolEvaluateQuality, nil))
	assert.ErrorIs(t, err, graph.ErrDuplicateTool)
}
