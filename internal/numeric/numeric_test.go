package numeric_test

import (
	"math"
	"testing"

	"github.com/rcornwell/cncbrain/internal/numeric"
)

func approxEq(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6 {
		t.Errorf("expected %.6f, got %.6f (|diff|=%.6f)", want, got, math.Abs(got-want))
	}
}

func TestNormalizeRotaryTargetBoundaries(t *testing.T) {
	approxEq(t, numeric.NormalizeRotaryTarget(180.0), 180.0)
	approxEq(t, numeric.NormalizeRotaryTarget(180.0001), -179.9999)
	approxEq(t, numeric.NormalizeRotaryTarget(-180.0), 180.0)
	approxEq(t, numeric.NormalizeRotaryTarget(-180.0001), 179.9999)
	approxEq(t, numeric.NormalizeRotaryTarget(370.0), 10.0)
	approxEq(t, numeric.NormalizeRotaryTarget(-370.0), -10.0)
}

func TestRapidFeedLinearClamps(t *testing.T) {
	approxEq(t, numeric.RapidFeedLinear(0), numeric.RapidLinearMinMMMin)
	approxEq(t, numeric.RapidFeedLinear(100000), numeric.RapidLinearMaxMMMin)
	approxEq(t, numeric.RapidFeedLinear(2000), 60000)
}

func TestRapidFeedRotaryClamps(t *testing.T) {
	approxEq(t, numeric.RapidFeedRotary(0), numeric.RapidRotaryMinDegMin)
	approxEq(t, numeric.RapidFeedRotary(100000), numeric.RapidRotaryMaxDegMin)
	approxEq(t, numeric.RapidFeedRotary(500), 10000)
}

func TestLineIntersection2D(t *testing.T) {
	got, ok := numeric.LineIntersection2D(
		numeric.Point2{X: 0, Y: 0}, numeric.Point2{X: 1, Y: 0},
		numeric.Point2{X: 5, Y: -5}, numeric.Point2{X: 0, Y: 1},
	)
	if !ok {
		t.Fatalf("expected intersection")
	}
	approxEq(t, got.X, 5)
	approxEq(t, got.Y, 0)
}

func TestLineIntersection2DParallel(t *testing.T) {
	_, ok := numeric.LineIntersection2D(
		numeric.Point2{X: 0, Y: 0}, numeric.Point2{X: 1, Y: 0},
		numeric.Point2{X: 0, Y: 1}, numeric.Point2{X: 1, Y: 0},
	)
	if ok {
		t.Errorf("expected no intersection for parallel lines")
	}
}

func TestBuildShortArcPointsDegenerateRadius(t *testing.T) {
	pts := numeric.BuildShortArcPoints(0, 0, numeric.Point2{X: 1, Y: 0}, numeric.Point2{X: 0, Y: 1}, 0)
	if len(pts) != 1 || pts[0].X != 0 || pts[0].Y != 1 {
		t.Errorf("expected single endpoint for degenerate radius, got %v", pts)
	}
}

func TestBuildShortArcPointsQuarterTurn(t *testing.T) {
	pts := numeric.BuildShortArcPoints(0, 0, numeric.Point2{X: 10, Y: 0}, numeric.Point2{X: 0, Y: 10}, 10)
	if len(pts) < 4 || len(pts) > 48 {
		t.Fatalf("expected point count clamped to [4,48], got %d", len(pts))
	}
	last := pts[len(pts)-1]
	approxEq(t, last.X, 0)
	approxEq(t, last.Y, 10)
	for _, p := range pts {
		r := math.Hypot(p.X, p.Y)
		approxEq(t, r, 10)
	}
}
