package environment

// Characteristic describes how a terrain cell affects a radio signal.
type Characteristic struct {
	PathLossExponent float64 `json:"pathLossExponent"`
	ShadowFading     float64 `json:"shadowFading"` // standard deviation of the gaussian fading, dB
}

// Terrain presets.
var (
	Plain  = Characteristic{PathLossExponent: 2.0, ShadowFading: 1.0}
	Forest = Characteristic{PathLossExponent: 2.8, ShadowFading: 4.0}
	City   = Characteristic{PathLossExponent: 3.5, ShadowFading: 6.0}
)

// Position is an integer cell coordinate on the map.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Preset returns the terrain preset called name.
func Preset(name string) (Characteristic, bool) {
	switch name {
	case "plain":
		return Plain, true
	case "forest":
		return Forest, true
	case "city":
		return City, true
	case "free", "":
		return Characteristic{}, true
	}
	return Characteristic{}, false
}
