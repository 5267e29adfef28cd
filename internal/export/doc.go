// Package export writes trajectories for external tools: a headerless
// comma-separated series (time, readiness, then the six states), an indented
// JSON document and a standalone SVG chart.
package export
