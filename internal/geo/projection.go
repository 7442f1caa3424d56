package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/umahmood/haversine"
)

// Web Mercator constants
const (
	TileSize       = 256
	MaxLatitude    = 85.0511287798
	mercatorExtent = math.Pi * orb.EarthRadius
)

// WorldSize returns the width (and height) of the world in pixels at zoom z
func WorldSize(z int) float64 {
	return TileSize * math.Exp2(float64(z))
}

// Project converts a lon/lat point to world pixel coordinates at zoom z.
// Pixel y grows southward, origin is the north-west corner of the world.
func Project(p orb.Point, z int) orb.Point {
	lat := math.Max(-MaxLatitude, math.Min(MaxLatitude, p.Lat()))
	m := project.WGS84.ToMercator(orb.Point{p.Lon(), lat})
	size := WorldSize(z)
	return orb.Point{
		(m[0]/mercatorExtent + 1) / 2 * size,
		(1 - m[1]/mercatorExtent) / 2 * size,
	}
}

// Unproject converts world pixel coordinates at zoom z back to lon/lat
func Unproject(px orb.Point, z int) orb.Point {
	size := WorldSize(z)
	m := orb.Point{
		(px[0]/size*2 - 1) * mercatorExtent,
		(1 - px[1]/size*2) * mercatorExtent,
	}
	return project.Mercator.ToWGS84(m)
}

// ProjectBound projects a geographic bound to a pixel bound at zoom z
func ProjectBound(b orb.Bound, z int) orb.Bound {
	nw := Project(orb.Point{b.Min.Lon(), b.Max.Lat()}, z)
	se := Project(orb.Point{b.Max.Lon(), b.Min.Lat()}, z)
	return orb.Bound{Min: nw, Max: se}
}

// ProjectGeometry maps every vertex of g to world pixels at zoom z. Points,
// lines and polygons (and their multi forms) are supported; other geometries
// return nil.
func ProjectGeometry(g orb.Geometry, z int) orb.Geometry {
	switch g := g.(type) {
	case orb.Point:
		return Project(g, z)
	case orb.MultiPoint:
		out := make(orb.MultiPoint, len(g))
		for i, p := range g {
			out[i] = Project(p, z)
		}
		return out
	case orb.LineString:
		return projectLine(g, z)
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(g))
		for i, ls := range g {
			out[i] = projectLine(ls, z)
		}
		return out
	case orb.Ring:
		return projectRing(g, z)
	case orb.Polygon:
		return projectPolygon(g, z)
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(g))
		for i, poly := range g {
			out[i] = projectPolygon(poly, z)
		}
		return out
	case orb.Collection:
		out := make(orb.Collection, 0, len(g))
		for _, sub := range g {
			if pg := ProjectGeometry(sub, z); pg != nil {
				out = append(out, pg)
			}
		}
		return out
	}
	return nil
}

func projectLine(ls orb.LineString, z int) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[i] = Project(p, z)
	}
	return out
}

func projectRing(r orb.Ring, z int) orb.Ring {
	out := make(orb.Ring, len(r))
	for i, p := range r {
		out[i] = Project(p, z)
	}
	return out
}

func projectPolygon(poly orb.Polygon, z int) orb.Polygon {
	out := make(orb.Polygon, len(poly))
	for i, r := range poly {
		out[i] = projectRing(r, z)
	}
	return out
}

// Extent returns the great-circle width and height of b in kilometres. Width
// is measured along the middle latitude, height along the middle longitude.
func Extent(b orb.Bound) (widthKm, heightKm float64) {
	mid := b.Center()
	_, widthKm = haversine.Distance(
		haversine.Coord{Lat: mid.Lat(), Lon: b.Min.Lon()},
		haversine.Coord{Lat: mid.Lat(), Lon: b.Max.Lon()},
	)
	_, heightKm = haversine.Distance(
		haversine.Coord{Lat: b.Min.Lat(), Lon: mid.Lon()},
		haversine.Coord{Lat: b.Max.Lat(), Lon: mid.Lon()},
	)
	return widthKm, heightKm
}
