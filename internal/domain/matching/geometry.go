package matching

// Point is a pointer or card position in client coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Rect is an axis-aligned box.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Origin is the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.Left, Y: r.Top} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// ZoneRect is the measured box of one customer's drop area.
type ZoneRect struct {
	ZoneID string `json:"zone_id"`
	Rect   Rect   `json:"rect"`
}

// Geometry measures drop zones. It is consulted on every hit test so layout
// changes between events (scroll, resize) are always observed.
type Geometry interface {
	Zones() []ZoneRect
}

// Layout is a Geometry measured once by the caller, typically the client
// sending its current layout along with each pointer event.
type Layout []ZoneRect

// Zones implements Geometry.
func (l Layout) Zones() []ZoneRect { return l }

// GeometryFunc adapts a function to Geometry.
type GeometryFunc func() []ZoneRect

// Zones implements Geometry.
func (f GeometryFunc) Zones() []ZoneRect { return f() }

// zoneAt returns the first zone containing p.
func zoneAt(g Geometry, p Point) (string, bool) {
	if g == nil {
		return "", false
	}
	for _, z := range g.Zones() {
		if z.Rect.Contains(p) {
			return z.ZoneID, true
		}
	}
	return "", false
}
