package graph

import "errors"

var (
	// ErrNotFound is returned when a graph or run id is unknown to a store.
	ErrNotFound = errors.New("not found")

	// ErrListUnsupported is returned when the run store cannot enumerate runs.
	ErrListUnsupported = errors.New("run store does not support listing")

	// ErrUnknownNode is returned when the current node is not declared in the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnregisteredFunction is returned when a node names a function missing from the node registry.
	ErrUnregisteredFunction = errors.New("node function not registered")

	// ErrInvalidResult is returned when a node function result is not a mapping.
	ErrInvalidResult = errors.New("node function must return a mapping")

	// ErrInvalidState is returned when the state part of a node result is not a mapping.
	ErrInvalidState = errors.New("result state must be a mapping if present")

	// ErrUnknownTool is returned when a node asks for a tool that is not registered.
	ErrUnknownTool = errors.New("tool not registered")

	// ErrDuplicateTool is returned when two tools share a name.
	ErrDuplicateTool = errors.New("duplicate tool name")
)
