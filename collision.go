package main

import "math"

// minSegmentLen guards swept hit tests against degenerate directions.
const minSegmentLen = 1e-6

// Box is an axis-aligned bounding volume.
type Box struct {
	Min, Max Vec3
}

// NewBox builds a box from a base-center point, half-width, half-depth and
// full height. The base sits at center.Y.
func NewBox(center Vec3, halfW, halfD, height float64) Box {
	return Box{
		Min: Vec3{center.X - halfW, center.Y, center.Z - halfD},
		Max: Vec3{center.X + halfW, center.Y + height, center.Z + halfD},
	}
}

// Contains reports whether p lies inside the box.
func (b Box) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ContainsXZ reports whether p's planar position lies over the box footprint.
func (b Box) ContainsXZ(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersects reports whether two boxes overlap.
func (b Box) Intersects(o Box) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// SegmentBox tests the segment from a to b against the box using the slab
// method. Returns the entry parameter t in [0,1] and whether it hit.
func SegmentBox(a, b Vec3, box Box) (float64, bool) {
	d := b.Sub(a)
	if d.Len() < minSegmentLen {
		// Clamp degenerate segments to a minimum-length downward probe
		// so the slab test never sees a zero direction.
		d = Vec3{0, -minSegmentLen, 0}
	}

	tMin := 0.0
	tMax := 1.0
	for axis := 0; axis < 3; axis++ {
		var origin, dir, lo, hi float64
		switch axis {
		case 0:
			origin, dir, lo, hi = a.X, d.X, box.Min.X, box.Max.X
		case 1:
			origin, dir, lo, hi = a.Y, d.Y, box.Min.Y, box.Max.Y
		default:
			origin, dir, lo, hi = a.Z, d.Z, box.Min.Z, box.Max.Z
		}
		if math.Abs(dir) < 1e-12 {
			if origin < lo || origin > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - origin) / dir
		t2 := (hi - origin) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, false
		}
	}
	return tMin, true
}

// GroundHeightUnder probes straight down from origin and returns the height
// of the highest surface top below it. ok is false when nothing lies below.
func GroundHeightUnder(origin Vec3, surfaces []Box) (float64, bool) {
	best := math.Inf(-1)
	found := false
	for _, s := range surfaces {
		if !s.ContainsXZ(origin) {
			continue
		}
		if s.Max.Y <= origin.Y+1e-9 && s.Max.Y > best {
			best = s.Max.Y
			found = true
		}
	}
	return best, found
}
