// Package router turns pairs of positioned bars into orthogonal connector
// paths. Output is renderer-agnostic segment data; the caller decides how
// to stroke it (SVG, canvas, terminal cells). Paths must be recomputed
// whenever any upstream bar geometry changes.
package router

import (
	"fmt"
	"math"

	"github.com/atelierworks/timberline/internal/domain"
)

// anchorGapPx is the horizontal clearance kept between a bar edge and the
// first bend of its connector.
const anchorGapPx = 15.0

// bendRadiusPx rounds the corners of the mid-transition on S-shaped paths.
const bendRadiusPx = 5.0

// laneClearancePx pushes a detour lane past the row boundary so the lane
// never crosses a bar body.
const laneClearancePx = 5.0

type Point struct {
	X, Y float64
}

type SegmentKind int

const (
	SegLine SegmentKind = iota
	SegQuad
)

// Segment is one stroke of a path: a straight line to To, or a quadratic
// curve to To bending around Ctrl.
type Segment struct {
	Kind SegmentKind
	To   Point
	Ctrl Point
}

// Bar is the positioned geometry of one item's bar: Left/Width on the
// pixel axis and Top as the row's vertical offset.
type Bar struct {
	Left  float64
	Width float64
	Top   float64
}

// Path is a routed connector with everything a renderer needs: the
// segments, endpoint coordinates for marker/label placement, the
// per-type stroke color, and the lag annotation.
type Path struct {
	Start    Point
	End      Point
	Segments []Segment
	Color    string
	Dashed   bool
	LagLabel string
	LabelAt  Point
}

// TypeColor returns the fixed display color for a relationship type,
// used for both stroke and arrowhead marker.
func TypeColor(t domain.DependencyType) string {
	switch t {
	case domain.StartToStart:
		return "#3b82f6" // blue
	case domain.FinishToFinish:
		return "#10b981" // green
	case domain.StartToFinish:
		return "#ef4444" // red
	default:
		return "#6b7280" // gray
	}
}

// anchors returns the source exit and target approach geometry for a
// type. exitDir/approachDir are +1 when the connector leaves or arrives
// moving rightward, -1 leftward.
func anchors(src, dst Bar, t domain.DependencyType, rowHeight float64) (start, end Point, exitDir, approachDir float64) {
	srcY := src.Top + rowHeight/2
	dstY := dst.Top + rowHeight/2
	switch t {
	case domain.StartToStart:
		return Point{src.Left, srcY}, Point{dst.Left, dstY}, -1, +1
	case domain.FinishToFinish:
		return Point{src.Left + src.Width, srcY}, Point{dst.Left + dst.Width, dstY}, +1, -1
	case domain.StartToFinish:
		return Point{src.Left, srcY}, Point{dst.Left + dst.Width, dstY}, -1, -1
	default: // Finish-to-Start
		return Point{src.Left + src.Width, srcY}, Point{dst.Left, dstY}, +1, +1
	}
}

// Route computes the connector between two bars for the given
// relationship type and lag.
func Route(src, dst Bar, t domain.DependencyType, lagDays int, rowHeight float64) Path {
	start, end, exitDir, approachDir := anchors(src, dst, t, rowHeight)

	p := Path{
		Start:  start,
		End:    end,
		Color:  TypeColor(t),
		Dashed: lagDays != 0,
	}
	if lagDays != 0 {
		p.LagLabel = fmt.Sprintf("%+dd", lagDays)
		p.LabelAt = Point{X: end.X - approachDir*anchorGapPx, Y: end.Y - 8}
	}

	if math.Abs(end.Y-start.Y) < rowHeight/2 {
		p.Segments = sameRowSegments(start, end, exitDir, approachDir)
		return p
	}

	// Travel direction decides whether the anchors cooperate: a path is
	// "natural" only when the source exits and the target is approached
	// in the direction of travel. Per type that means FS moving right,
	// SF moving left, and nothing else; SS and FF always have one anchor
	// fighting the flow on one side.
	dir := 1.0
	if end.X < start.X {
		dir = -1.0
	}
	if exitDir == dir && approachDir == dir {
		p.Segments = sCurveSegments(start, end, dir)
	} else {
		p.Segments = detourSegments(start, end, exitDir, approachDir, rowHeight)
	}
	return p
}

// sameRowSegments emits the two-bend polyline used when both bars share a
// row: out from the source anchor, across, and into the target anchor.
func sameRowSegments(start, end Point, exitDir, approachDir float64) []Segment {
	return []Segment{
		{Kind: SegLine, To: Point{start.X + exitDir*anchorGapPx, start.Y}},
		{Kind: SegLine, To: Point{end.X - approachDir*anchorGapPx, end.Y}},
		{Kind: SegLine, To: end},
	}
}

// sCurveSegments emits the smooth path for cooperating anchors: run to
// the horizontal midpoint, round the corner, drop (or rise) to the target
// row, round again, and run in.
func sCurveSegments(start, end Point, dir float64) []Segment {
	midX := (start.X + end.X) / 2
	down := 1.0
	if end.Y < start.Y {
		down = -1.0
	}
	return []Segment{
		{Kind: SegLine, To: Point{midX - dir*bendRadiusPx, start.Y}},
		{Kind: SegQuad, Ctrl: Point{midX, start.Y}, To: Point{midX, start.Y + down*bendRadiusPx}},
		{Kind: SegLine, To: Point{midX, end.Y - down*bendRadiusPx}},
		{Kind: SegQuad, Ctrl: Point{midX, end.Y}, To: Point{midX + dir*bendRadiusPx, end.Y}},
		{Kind: SegLine, To: end},
	}
}

// detourSegments routes anchors that fight the travel direction through
// an explicit horizontal lane just outside the source row, on the side
// facing the target, so the run never crosses a bar body.
func detourSegments(start, end Point, exitDir, approachDir float64, rowHeight float64) []Segment {
	down := 1.0
	if end.Y < start.Y {
		down = -1.0
	}
	laneY := start.Y + down*(rowHeight/2+laneClearancePx)
	outX := start.X + exitDir*anchorGapPx
	inX := end.X - approachDir*anchorGapPx
	return []Segment{
		{Kind: SegLine, To: Point{outX, start.Y}},
		{Kind: SegLine, To: Point{outX, laneY}},
		{Kind: SegLine, To: Point{inX, laneY}},
		{Kind: SegLine, To: Point{inX, end.Y}},
		{Kind: SegLine, To: end},
	}
}
