// Package viz provides terminal views of particles in a box.
//
//   - [Model]: Bubble Tea live view of an ensemble with a Braille canvas
//     projection, short trails and a stats panel
//   - [Canvas]: Braille-based pixel canvas
//   - [PlotSeries], [PlotProfile], [RenderProjection]: static plots for
//     stored runs
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to initial state
//	P     - Cycle projection (xy, xz, yz)
//	Q     - Quit
package viz
