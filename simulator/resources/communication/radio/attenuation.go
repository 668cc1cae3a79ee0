package radio

import (
	"math"

	rp "github.com/R3DPanda1/LWN-PHY-Sim/simulator/components/device/regional_parameters"
	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
)

// PowerFloor is the power under which a signal is considered lost.
const PowerFloor = -300.0

// MoveTo walks from the receiver cell toward the sender cell one step at a
// time, subtracting the log-distance path loss of every cell crossed, and
// finally applies a shadow fading sample drawn with the last cell's deviation.
//
// The walk steps diagonally while the x and y distances are within a factor
// two of each other and along the dominant axis otherwise. The last unit step
// carries no loss. A walk that leaves the grid returns PowerFloor.
func MoveTo(grid Grid, from, to environment.Position, power float64, rng Gaussian) float64 {
	x, y := from.X, from.Y
	xDist, yDist := abs(x-to.X), abs(y-to.Y)
	cell, ok := grid.CharacteristicAt(x, y)
	if !ok {
		return PowerFloor
	}

	for power > PowerFloor && xDist+yDist > 0 {
		xDist, yDist = abs(x-to.X), abs(y-to.Y)
		xDir, yDir := sign(x-to.X), sign(y-to.Y)
		if cell, ok = grid.CharacteristicAt(x, y); !ok {
			return PowerFloor
		}

		dist := float64(xDist + yDist)
		switch {
		case xDist+yDist > 1:
			if xDist > 2*yDist || yDist > 2*xDist {
				power -= 10 * cell.PathLossExponent * (math.Log10(dist) - math.Log10(dist-1))
				if xDist > 2*yDist {
					x -= xDir
				} else {
					y -= yDir
				}
			} else {
				power -= 10 * cell.PathLossExponent * (math.Log10(dist) - math.Log10(dist-math.Sqrt2))
				x -= xDir
				y -= yDir
			}
		case xDist+yDist == 1:
			if xDist > yDist {
				x -= xDir
			} else {
				y -= yDir
			}
		}
	}

	return power - rng.NormFloat64()*cell.ShadowFading
}

// Strong reports whether power is above the receiver sensitivity of param.
func Strong(power float64, param *rp.RegionalParameter) bool {
	return power > param.Sensitivity()
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
