package main

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/smallnest/flowgraph/graph"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	statusStyles = map[graph.RunStatus]lipgloss.Style{
		graph.StatusCompleted: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		graph.StatusFailed:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		graph.StatusRunning:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
	}
)

const maxValueWidth = 60

// renderReport formats a finished run: a header, the step log with the keys
// each step changed, and the final state.
func renderReport(name string, initial map[string]any, run *graph.RunRecord) string {
	var sections []string

	header := []string{
		titleStyle.Render(name),
		labelStyle.Render("run    ") + run.ID,
		labelStyle.Render("status ") + statusStyles[run.Status].Render(string(run.Status)),
		labelStyle.Render("steps  ") + strconv.Itoa(len(run.Log)),
	}
	if run.Error != "" {
		header = append(header, labelStyle.Render("error  ")+errorStyle.Render(run.Error))
	}
	sections = append(sections, strings.Join(header, "\n"))

	if len(run.Log) > 0 {
		steps := newTable("#", "node", "function", "changed")
		prev := initial
		for i, step := range run.Log {
			steps.Row(strconv.Itoa(i+1), step.Node, step.Function, strings.Join(changedKeys(prev, step.StateSnapshot), ", "))
			prev = step.StateSnapshot
		}
		sections = append(sections, steps.String())
	}

	state := newTable("key", "value")
	for _, k := range sortedKeys(run.State) {
		state.Row(k, truncate(fmt.Sprint(run.State[k]), maxValueWidth))
	}
	sections = append(sections, state.String())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(labelStyle).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// changedKeys lists keys added or modified between two states.
func changedKeys(before, after map[string]any) []string {
	var keys []string
	for _, k := range sortedKeys(after) {
		old, ok := before[k]
		if !ok || !reflect.DeepEqual(old, after[k]) {
			keys = append(keys, k)
		}
	}
	return keys
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
