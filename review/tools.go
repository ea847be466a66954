package review

import (
	"context"
	"math"
	"strings"

	"github.com/smallnest/flowgraph/graph"
)

// Tool names registered by Tools.
const (
	ToolExtractFunctions    = "extract_functions"
	ToolCheckComplexity     = "check_complexity"
	ToolDetectBasicIssues   = "detect_basic_issues"
	ToolSuggestImprovements = "suggest_improvements"
	ToolEvaluateQuality     = "evaluate_quality"
)

// Issue and suggestion messages.
const (
	IssueDebugPrint = "Debug print statements detected."
	IssueTODO       = "TODO comments not resolved."

	SuggestRefactor   = "Refactor large functions into smaller ones."
	SuggestResolve    = "Resolve all TODOs and remove debug prints."
	SuggestMoreTests  = "Code looks clean. Consider adding more tests."
	defaultComplexity = 0.5
)

// ExtractFunctions returns the trimmed lines of code that start a function definition.
func ExtractFunctions(code string) []string {
	functions := []string{}
	for _, line := range strings.Split(strings.ReplaceAll(code, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "def ") {
			functions = append(functions, line)
		}
	}
	return functions
}

// ComplexityScore grows by 0.1 per function from a base of 0.2, capped at 1.
func ComplexityScore(functionCount int) float64 {
	return math.Min(1.0, 0.2+0.1*float64(functionCount))
}

// DetectBasicIssues flags debug prints and unresolved TODO comments.
func DetectBasicIssues(code string) []string {
	issues := []string{}
	if strings.Contains(code, "print(") {
		issues = append(issues, IssueDebugPrint)
	}
	if strings.Contains(strings.ToLower(code), "todo") {
		issues = append(issues, IssueTODO)
	}
	return issues
}

// SuggestImprovements derives suggestions from the complexity score and issue count.
func SuggestImprovements(complexity float64, issueCount int) []string {
	suggestions := []string{}
	if complexity > 0.7 {
		suggestions = append(suggestions, SuggestRefactor)
	}
	if issueCount > 0 {
		suggestions = append(suggestions, SuggestResolve)
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, SuggestMoreTests)
	}
	return suggestions
}

// QualityScore is 1 minus complexity minus 0.1 per issue, floored at 0 and
// rounded to two decimals. Having no suggestions adds a 0.2 bonus capped at 1.
func QualityScore(complexity float64, issueCount int, suggestions int) float64 {
	score := math.Max(0, 1.0-complexity-0.1*float64(issueCount))
	if suggestions == 0 {
		score = math.Min(1.0, score+0.2)
	}
	return math.Round(score*100) / 100
}

// Tools returns the review tools ready for a graph.ToolRegistry.
func Tools() []graph.Tool {
	return []graph.Tool{
		graph.NewTool(ToolExtractFunctions, func(ctx context.Context, args map[string]any) (map[string]any, error) {
			functions := ExtractFunctions(asString(args["code"]))
			return map[string]any{
				"functions":      functions,
				"function_count": len(functions),
			}, nil
		}),
		graph.NewTool(ToolCheckComplexity, func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return map[string]any{
				"complexity_score": ComplexityScore(len(asStrings(args["functions"]))),
			}, nil
		}),
		graph.NewTool(ToolDetectBasicIssues, func(ctx context.Context, args map[string]any) (map[string]any, error) {
			issues := DetectBasicIssues(asString(args["code"]))
			return map[string]any{
				"issues":      issues,
				"issue_count": len(issues),
			}, nil
		}),
		graph.NewTool(ToolSuggestImprovements, func(ctx context.Context, args map[string]any) (map[string]any, error) {
			return map[string]any{
				"suggestions": SuggestImprovements(asFloat(args["complexity_score"], 0), asInt(args["issue_count"])),
			}, nil
		}),
		graph.NewTool(ToolEvaluateQuality, func(ctx context.Context, args map[string]any) (map[string]any, error) {
			score := QualityScore(
				asFloat(args["complexity_score"], defaultComplexity),
				asInt(args["issue_count"]),
				len(asStrings(args["suggestions"])),
			)
			return map[string]any{"quality_score": score}, nil
		}),
	}
}

// State values may arrive as Go values or decoded JSON, so the helpers accept both.

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStrings(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func asFloat(v any, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return fallback
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
