package environment

import (
	"log/slog"
	"math"

	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/resources/location"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/scheduler"
)

// Environment is the terrain grid the simulation runs on, together with its
// geographic reference and virtual clock. Cells are indexed [x][y].
type Environment struct {
	cells     [][]Characteristic
	maxX      int
	maxY      int
	zones     int
	origin    location.Location
	wayPoints []location.Location
	runs      int

	Clock *scheduler.Scheduler
}

// New builds an environment over cells. A grid that is empty or has rows of
// different length is replaced by an empty 0x0 grid.
//
// The empty grid still reports 0 as its max coordinates, so IsValidX(0) and
// IsValidY(0) hold even though no cell exists there.
func New(cells [][]Characteristic, origin location.Location, wayPoints []location.Location) *Environment {
	env := &Environment{
		origin:    origin,
		wayPoints: wayPoints,
		runs:      1,
		Clock:     scheduler.New(),
	}
	if validCells(cells) {
		env.cells = cells
		env.maxX = len(cells) - 1
		env.maxY = len(cells[0]) - 1
		env.zones = len(cells) * len(cells[0])
	} else {
		slog.Warn("invalid characteristics map, using an empty grid", "component", "environment", "rows", len(cells))
		env.cells = [][]Characteristic{}
	}
	return env
}

// NewUniform builds a width x height environment filled with c.
func NewUniform(width, height int, c Characteristic, origin location.Location) *Environment {
	cells := make([][]Characteristic, width)
	for x := range cells {
		cells[x] = make([]Characteristic, height)
		for y := range cells[x] {
			cells[x][y] = c
		}
	}
	return New(cells, origin, nil)
}

func validCells(cells [][]Characteristic) bool {
	if len(cells) == 0 || len(cells[0]) == 0 {
		return false
	}
	size := len(cells[0])
	for _, row := range cells {
		if len(row) != size {
			return false
		}
	}
	return true
}

func (e *Environment) MaxX() int { return e.maxX }

func (e *Environment) MaxY() int { return e.maxY }

func (e *Environment) NumberOfZones() int { return e.zones }

func (e *Environment) IsValidX(x int) bool { return x >= 0 && x <= e.maxX }

func (e *Environment) IsValidY(y int) bool { return y >= 0 && y <= e.maxY }

func (e *Environment) IsValid(p Position) bool { return e.IsValidX(p.X) && e.IsValidY(p.Y) }

// CharacteristicAt returns the cell at (x, y), or false when no such cell exists.
func (e *Environment) CharacteristicAt(x, y int) (Characteristic, bool) {
	if !e.IsValidX(x) || !e.IsValidY(y) || x >= len(e.cells) || y >= len(e.cells[x]) {
		return Characteristic{}, false
	}
	return e.cells[x][y], true
}

// SetCharacteristic replaces the cell at (x, y). It reports false when the
// coordinate is outside the grid.
func (e *Environment) SetCharacteristic(x, y int, c Characteristic) bool {
	if _, ok := e.CharacteristicAt(x, y); !ok {
		return false
	}
	e.cells[x][y] = c
	return true
}

// Fill sets every cell of the inclusive rectangle (x0,y0)-(x1,y1) to c, clipped to the grid.
func (e *Environment) Fill(x0, y0, x1, y1 int, c Characteristic) {
	for x := max(0, min(x0, x1)); x <= min(e.maxX, max(x0, x1)); x++ {
		for y := max(0, min(y0, y1)); y <= min(e.maxY, max(y0, y1)); y++ {
			e.SetCharacteristic(x, y, c)
		}
	}
}

func (e *Environment) MapOrigin() location.Location { return e.origin }

func (e *Environment) WayPoints() []location.Location { return e.wayPoints }

func (e *Environment) AddWayPoint(p location.Location) {
	e.wayPoints = append(e.wayPoints, p)
}

// Runs returns how many runs have been played on this configuration.
func (e *Environment) Runs() int { return e.runs }

func (e *Environment) AddRun() { e.runs++ }

// Reset rewinds the clock and the run counter.
func (e *Environment) Reset() {
	e.Clock.Reset()
	e.runs = 1
}

// ToLatitude converts a y coordinate (metres north of the origin) to a latitude.
func (e *Environment) ToLatitude(y int) float64 {
	lat := float64(y) / 1000
	lat = lat / 1.609344
	lat = lat / (60 * 1.1515)
	return lat + e.origin.Latitude
}

// ToLongitude converts an x coordinate (metres east of the origin) to a longitude.
func (e *Environment) ToLongitude(x int) float64 {
	if x <= 0 {
		return e.origin.Longitude
	}
	originLat := e.origin.Latitude * math.Pi / 180
	lon := float64(x) / 1000
	lon = lon / 1.609344
	lon = lon / (60 * 1.1515)
	lon = math.Cos(lon * math.Pi / 180)
	lon = lon - math.Sin(originLat)*math.Sin(originLat)
	lon = lon / (math.Cos(originLat) * math.Cos(originLat))
	lon = math.Acos(math.Min(1, lon)) * 180 / math.Pi
	return lon + e.origin.Longitude
}

// ToMapX converts a geographic point to its x coordinate.
func (e *Environment) ToMapX(p location.Location) int {
	return int(math.Round(1000 * location.GetDistance(e.origin.Latitude, e.origin.Longitude, e.origin.Latitude, p.Longitude)))
}

// ToMapY converts a geographic point to its y coordinate.
func (e *Environment) ToMapY(p location.Location) int {
	return int(math.Round(1000 * location.GetDistance(e.origin.Latitude, e.origin.Longitude, p.Latitude, e.origin.Longitude)))
}

// ToLocation converts a cell coordinate back to a geographic point.
func (e *Environment) ToLocation(p Position) location.Location {
	return location.Location{Latitude: e.ToLatitude(p.Y), Longitude: e.ToLongitude(p.X)}
}

func (e *Environment) MapCenter() location.Location {
	return location.Location{Latitude: e.ToLatitude(e.maxY / 2), Longitude: e.ToLongitude(e.maxX / 2)}
}

// StepToward moves p one cell toward target along the axis with the larger
// remaining distance. It reports false when p is already there.
func (e *Environment) StepToward(p Position, target location.Location) (Position, bool) {
	tx, ty := e.ToMapX(target), e.ToMapY(target)
	dx, dy := sign(tx-p.X), sign(ty-p.Y)
	if dx == 0 && dy == 0 {
		return p, false
	}
	if abs(p.X-tx) >= abs(p.Y-ty) {
		p.X += dx
	} else {
		p.Y += dy
	}
	return p, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
