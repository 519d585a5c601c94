package force_test

import (
	"context"
	"math"
	"testing"

	"github.com/okian/labviz/internal/domain/force"
	. "github.com/smartystreets/goconvey/convey"
)

func minDistance(nodes []force.Node) float64 {
	best := math.Inf(1)
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			d := math.Hypot(nodes[i].X-nodes[j].X, nodes[i].Y-nodes[j].Y)
			best = math.Min(best, d)
		}
	}
	return best
}

func centroidNodes(n int, x, y float64) []force.Node {
	nodes := make([]force.Node, n)
	for i := range nodes {
		nodes[i] = force.Node{X: x, Y: y, TargetX: x, TargetY: y}
	}
	return nodes
}

func TestAlphaSchedule(t *testing.T) {
	Convey("Given a simulation with the default schedule", t, func() {
		sim := force.New(nil)

		Convey("When the full budget runs", func() {
			n, err := sim.Run(context.Background(), 300)

			Convey("Then alpha has decayed to its minimum", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 300)
				So(sim.Alpha(), ShouldAlmostEqual, force.DefaultAlphaMin, 1e-9)
			})
		})
	})
}

func TestAttraction(t *testing.T) {
	Convey("Given one node away from its target", t, func() {
		sim := force.New([]force.Node{{X: 0, TargetX: 100}}, force.WithForces(force.X{Strength: 0.1}))
		_, err := sim.Run(context.Background(), 300)

		Convey("Then it settles on the target", func() {
			So(err, ShouldBeNil)
			So(sim.Nodes()[0].X, ShouldAlmostEqual, 100, 1)
			So(sim.Nodes()[0].Y, ShouldEqual, 0)
		})
	})
}

func TestCollide(t *testing.T) {
	Convey("Given fifty points starting at the viewport centre", t, func() {
		nodes := centroidNodes(50, 700, 250)
		sim := force.New(nodes,
			force.WithSeed(42),
			force.WithForces(force.X{Strength: 0.1}, force.Y{Strength: 0.1}, force.Collide{Radius: 5, Strength: 1}),
		)
		_, err := sim.Run(context.Background(), 300)
		So(err, ShouldBeNil)
		out := sim.Nodes()

		Convey("Then coincident points are separated to about twice the radius", func() {
			So(minDistance(out), ShouldBeGreaterThan, 8.5)
		})

		Convey("Then the cluster stays centred", func() {
			var cx, cy float64
			for _, n := range out {
				cx += n.X
				cy += n.Y
			}
			So(cx/50, ShouldAlmostEqual, 700, 0.5)
			So(cy/50, ShouldAlmostEqual, 250, 0.5)
		})

		Convey("Then the input slice is not modified", func() {
			So(nodes[0].X, ShouldEqual, 700)
		})
	})

	Convey("Given the same seed twice", t, func() {
		run := func() []force.Node {
			sim := force.New(centroidNodes(10, 0, 0), force.WithSeed(7), force.WithForces(force.Collide{Radius: 3}))
			_, _ = sim.Run(context.Background(), 50)
			return sim.Nodes()
		}

		Convey("Then the layout is reproducible", func() {
			So(run(), ShouldResemble, run())
		})
	})
}

func TestCallbacksAndCancellation(t *testing.T) {
	Convey("Given tick and end callbacks", t, func() {
		ticks, ends := 0, 0
		sim := force.New(centroidNodes(3, 0, 0),
			force.OnTick(func(int, []force.Node) { ticks++ }),
			force.OnEnd(func([]force.Node) { ends++ }),
		)

		Convey("When the budget defaults", func() {
			n, err := sim.Run(context.Background(), 0)

			Convey("Then every tick is observed and end fires once", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, force.DefaultIterations)
				So(ticks, ShouldEqual, force.DefaultIterations)
				So(ends, ShouldEqual, 1)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			n, err := sim.Run(ctx, 10)

			Convey("Then no tick runs and end does not fire", func() {
				So(err, ShouldEqual, context.Canceled)
				So(n, ShouldEqual, 0)
				So(ends, ShouldEqual, 0)
			})
		})
	})
}
