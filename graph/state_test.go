package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeState_OverwritesOnKey(t *testing.T) {
	state := map[string]any{"a": map[string]any{"x": 1}, "keep": true}

	MergeState(state, map[string]any{"a": map[string]any{"y": 2}})

	assert.Equal(t, map[string]any{"y": 2}, state["a"])
	assert.Equal(t, true, state["keep"])
}

func TestMergeState_DoesNotAliasUpdate(t *testing.T) {
	state := map[string]any{}
	nested := map[string]any{"n": 1}

	MergeState(state, map[string]any{"nested": nested})
	nested["n"] = 2

	assert.Equal(t, 1, state["nested"].(map[string]any)["n"])
}

func TestCloneState_DeepCopies(t *testing.T) {
	orig := map[string]any{
		"m":    map[string]any{"k": "v"},
		"list": []any{map[string]any{"i": 1}},
		"strs": []string{"a", "b"},
	}

	c := CloneState(orig)
	c["m"].(map[string]any)["k"] = "changed"
	c["list"].([]any)[0].(map[string]any)["i"] = 99
	c["strs"].([]string)[0] = "z"

	assert.Equal(t, "v", orig["m"].(map[string]any)["k"])
	assert.Equal(t, 1, orig["list"].([]any)[0].(map[string]any)["i"])
	assert.Equal(t, "a", orig["strs"].([]string)[0])
}

func TestCloneState_Nil(t *testing.T) {
	c := CloneState(nil)
	assert.NotNil(t, c)
	assert.Empty(t, c)
}

type stateItem struct {
	Name string
	Tags []string
}

func TestCloneState_DeepCopiesTypedValues(t *testing.T) {
	item := &stateItem{Name: "a", Tags: []string{"x"}}
	orig := map[string]any{
		"counts":  map[string]int{"a": 1},
		"flags":   []bool{true},
		"ids":     []int64{7},
		"rows":    []map[string]string{{"k": "v"}},
		"item":    item,
		"value":   stateItem{Name: "b", Tags: []string{"y"}},
		"grid":    [2][]int{{1}, {2}},
		"nilList": []int(nil),
	}

	c := CloneState(orig)
	c["counts"].(map[string]int)["a"] = 99
	c["flags"].([]bool)[0] = false
	c["ids"].([]int64)[0] = 0
	c["rows"].([]map[string]string)[0]["k"] = "changed"
	c["item"].(*stateItem).Tags[0] = "changed"
	c["value"].(stateItem).Tags[0] = "changed"
	c["grid"].([2][]int)[0][0] = 99

	assert.Equal(t, 1, orig["counts"].(map[string]int)["a"])
	assert.True(t, orig["flags"].([]bool)[0])
	assert.Equal(t, int64(7), orig["ids"].([]int64)[0])
	assert.Equal(t, "v", orig["rows"].([]map[string]string)[0]["k"])
	assert.Equal(t, "x", item.Tags[0])
	assert.NotSame(t, item, c["item"])
	assert.Equal(t, "y", orig["value"].(stateItem).Tags[0])
	assert.Equal(t, 1, orig["grid"].([2][]int)[0][0])
	assert.Nil(t, c["nilList"].([]int))
}

func TestCloneState_CyclicPointer(t *testing.T) {
	type node struct {
		Next *node
	}
	n := &node{}
	n.Next = n

	c := CloneState(map[string]any{"n": n})

	copied := c["n"].(*node)
	assert.NotSame(t, n, copied)
	assert.Same(t, copied, copied.Next)
}
