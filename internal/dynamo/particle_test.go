package dynamo_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ergobox/internal/dynamo"
)

var _ = Describe("Particle", func() {
	It("derives velocity from momentum", func() {
		p, err := dynamo.NewParticle(2, dynamo.Vec3{X: 0.5}, dynamo.Vec3{X: 4, Y: -2})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Velocity()).To(Equal(dynamo.Vec3{X: 2, Y: -1}))
		Expect(p.KineticEnergy()).To(BeNumerically("~", 5, 1e-12))
		Expect(p.Speed()).To(BeNumerically("~", 1.118033988749895, 1e-12))
	})

	It("refuses non-positive mass", func() {
		_, err := dynamo.NewParticle(0, dynamo.Vec3{}, dynamo.Vec3{X: 1})
		Expect(err).To(MatchError(dynamo.ErrInvalidMass))
	})

	It("clones independently", func() {
		p := &dynamo.Particle{Mass: 1, Position: dynamo.Vec3{X: 0.25}}
		c := p.Clone()
		c.Position.X = 0.75
		Expect(p.Position.X).To(Equal(0.25))
	})
})

var _ = Describe("Vec3", func() {
	a := dynamo.Vec3{X: 1, Y: 2, Z: 3}
	b := dynamo.Vec3{X: -4, Y: 0.5, Z: 2}

	It("adds, subtracts and scales componentwise", func() {
		Expect(a.Add(b)).To(Equal(dynamo.Vec3{X: -3, Y: 2.5, Z: 5}))
		Expect(a.Sub(b)).To(Equal(dynamo.Vec3{X: 5, Y: 1.5, Z: 1}))
		Expect(a.Scale(2)).To(Equal(dynamo.Vec3{X: 2, Y: 4, Z: 6}))
	})

	It("computes dot products and norms", func() {
		Expect(a.Dot(b)).To(Equal(3.0))
		Expect(dynamo.Vec3{X: 3, Z: 4}.Norm()).To(Equal(5.0))
	})
})
