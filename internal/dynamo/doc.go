// Package dynamo provides the core primitives for free particles in a
// reflecting cube.
//
// The package defines the particle state and the wall-collision resolver:
//
//   - [Vec3]: value-type 3-vector
//   - [Particle]: mass, position and momentum of a point particle
//   - [Box]: the cube [0, L]^3 and its resolver settings
//   - [Trace]: per-call accounting of sub-steps and wall impulses
//
// # Example
//
//	box, _ := dynamo.NewBox(1.0)
//	p, _ := dynamo.NewParticle(1, dynamo.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, dynamo.Vec3{Z: 2})
//	trace, err := box.Advance(p, 1.0)
//
// # Thread Safety
//
// [Box.Advance] only touches the particle it is given. Distinct particles
// may be advanced concurrently; use [ParallelFor] to split an ensemble.
package dynamo
