// Package viz renders readiness trajectories in the terminal.
//
//   - [PlotReadiness] and [PlotState]: line charts of a [sim.Readout]
//   - [Canvas]: Braille canvas for polylines in data coordinates
//   - [Replay]: Bubble Tea model that plays a trajectory back day by day
//
// # Replay keys
//
//	Space - Pause/Resume
//	←/→   - Step one day
//	R     - Restart from day 0
//	Q     - Quit
package viz
