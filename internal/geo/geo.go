// Package geo provides the coarse spatial index used by the geo matcher:
// geohash encoding of coordinates, the set of geohash ranges that cover a
// disc around a point, and true great-circle distance for the exact filter.
//
// The range computation over-approximates the disc with a handful of
// contiguous lexicographic ranges over the stored geohash column. Callers
// must filter the candidates of every range by real distance.
package geo

import (
	"math"
	"sort"

	"github.com/mmcloughlin/geohash"
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

const (
	// HashPrecision is the number of characters stored for provider and
	// order geohashes.
	HashPrecision = 10

	bitsPerChar          = 5
	maxBitsPrecision     = 22 * bitsPerChar
	metersPerDegreeLat   = 110574.0
	earthMeriCircumferen = 40007860.0
	earthEqRadius        = 6378137.0
	earthE2              = 0.00669447819799
	epsilon              = 1e-12

	// rangeEnd is appended to a prefix to close its range; it sorts after
	// every base32 geohash character.
	rangeEnd = "~"
)

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether p holds finite coordinates within WGS84 bounds.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

func (p Point) orb() orb.Point { return orb.Point{p.Lng, p.Lat} }

// Range is a closed lexicographic range [Start, End] over geohash strings.
type Range struct {
	Start string
	End   string
}

// Encode returns the geohash of p at HashPrecision characters.
func Encode(p Point) string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lng, HashPrecision)
}

// DistanceKm returns the great-circle (haversine) distance between a and b
// in kilometres.
func DistanceKm(a, b Point) float64 {
	return orbgeo.DistanceHaversine(a.orb(), b.orb()) / 1000
}

// QueryBounds returns the geohash ranges whose union covers a disc of
// radiusKm around center. The result is sorted and free of duplicates.
// When the disc is wider than a single-character cell the only range
// returned is the unbounded one.
func QueryBounds(center Point, radiusKm float64) []Range {
	radiusM := radiusKm * 1000
	bits := boundingBoxBits(center, radiusM)
	if bits < bitsPerChar {
		// Not even one full character can be fixed (near the poles or for
		// very large radii): scan everything.
		return []Range{{Start: "", End: rangeEnd}}
	}
	chars := uint(bits / bitsPerChar)

	// Cells at this precision are at least one radius tall and wide, so the
	// cells holding the box's corners, edge midpoints and center cover it.
	bound := orbgeo.NewBoundAroundPoint(center.orb(), radiusM)
	samples := []orb.Point{
		bound.Center(),
		{bound.Left(), bound.Top()}, {bound.Right(), bound.Top()},
		{bound.Left(), bound.Bottom()}, {bound.Right(), bound.Bottom()},
		{center.Lng, bound.Top()}, {center.Lng, bound.Bottom()},
		{bound.Left(), center.Lat}, {bound.Right(), center.Lat},
	}

	seen := make(map[string]struct{}, len(samples))
	out := make([]Range, 0, len(samples))
	for _, s := range samples {
		lat := clamp(s.Lat(), -90, 90)
		lng := wrapLng(s.Lon())
		prefix := geohash.EncodeWithPrecision(lat, lng, chars)
		if _, dup := seen[prefix]; dup {
			continue
		}
		seen[prefix] = struct{}{}
		out = append(out, Range{Start: prefix, End: prefix + rangeEnd})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// boundingBoxBits returns how many geohash bits can be fixed while a single
// cell still spans a box of ±size metres around c.
func boundingBoxBits(c Point, size float64) int {
	latDelta := size / metersPerDegreeLat
	north := math.Min(90, c.Lat+latDelta)
	south := math.Max(-90, c.Lat-latDelta)
	bitsLat := int(math.Floor(latitudeBitsForResolution(size))) * 2
	bitsLngNorth := int(math.Floor(longitudeBitsForResolution(size, north)))*2 - 1
	bitsLngSouth := int(math.Floor(longitudeBitsForResolution(size, south)))*2 - 1
	bits := bitsLat
	for _, b := range []int{bitsLngNorth, bitsLngSouth, maxBitsPrecision} {
		if b < bits {
			bits = b
		}
	}
	return bits
}

func latitudeBitsForResolution(resolution float64) float64 {
	return math.Min(math.Log2(earthMeriCircumferen/2/resolution), maxBitsPrecision)
}

func longitudeBitsForResolution(resolution, lat float64) float64 {
	degs := metersToLongitudeDegrees(resolution, lat)
	if math.Abs(degs) > 0.000001 {
		return math.Max(1, math.Log2(360/degs))
	}
	return 1
}

func metersToLongitudeDegrees(distance, lat float64) float64 {
	rad := lat * math.Pi / 180
	num := math.Cos(rad) * earthEqRadius * math.Pi / 180
	denom := 1 / math.Sqrt(1-earthE2*math.Sin(rad)*math.Sin(rad))
	deltaDeg := num * denom
	if deltaDeg < epsilon {
		if distance > 0 {
			return 360
		}
		return 0
	}
	return math.Min(360, distance/deltaDeg)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func wrapLng(lng float64) float64 {
	if lng >= -180 && lng <= 180 {
		return lng
	}
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}
