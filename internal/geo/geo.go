package geo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	geom "github.com/peterstace/simplefeatures/geom"
)

// PITCH POINTS
// The simulation frame is Y-up with the pitch in the XZ plane. Stored
// geometries put the pitch plane in XY and the height in Z, so a 2D viewer
// of the column shows the pitch from above.
// Geometry data is stored in the WKB format, which is a binary representation of the geometry data.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// PointFromVec3 converts a simulation position into an XYZ point.
func PointFromVec3(v mgl64.Vec3) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: v.X(), Y: v.Z()},
		Z:    v.Y(),
		Type: geom.DimXYZ,
	})
}

// Vec3FromPoint converts a stored point back into a simulation position.
// An empty point returns false.
func Vec3FromPoint(p geom.Point) (mgl64.Vec3, bool) {
	c, ok := p.Coordinates()
	if !ok {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{c.X, c.Z, c.Y}, true
}

// ParsePosition parses "x,y,z" in the simulation frame, or "x,z" for a
// point on the ground.
func ParsePosition(s string) (mgl64.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return mgl64.Vec3{}, ErrInvalidCoordinates
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return mgl64.Vec3{}, fmt.Errorf("%w: %q", ErrInvalidCoordinates, p)
		}
		vals[i] = f
	}
	if len(vals) == 2 {
		return mgl64.Vec3{vals[0], 0, vals[1]}, nil
	}
	return mgl64.Vec3{vals[0], vals[1], vals[2]}, nil
}

// LineStringFromPath builds an XYZ line string from a sampled flight path.
func LineStringFromPath(points []mgl64.Vec3) (geom.LineString, error) {
	if len(points) < 2 {
		return geom.LineString{}, fmt.Errorf("path must have at least 2 points, got %d", len(points))
	}
	flat := make([]float64, 0, len(points)*3)
	for _, p := range points {
		flat = append(flat, p.X(), p.Z(), p.Y())
	}
	return geom.NewLineString(geom.NewSequence(flat, geom.DimXYZ)), nil
}
