package location

import (
	"math"
	"testing"
)

func TestGetDistanceSamePoint(t *testing.T) {
	if d := GetDistance(50.8, 4.7, 50.8, 4.7); d != 0 {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestGetDistanceSymmetric(t *testing.T) {
	a := GetDistance(50.8, 4.7, 50.9, 4.8)
	b := GetDistance(50.9, 4.8, 50.8, 4.7)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", a, b)
	}
}

func TestGetDistanceOneDegreeLatitude(t *testing.T) {
	// one degree of latitude is ~111 km
	d := GetDistance(0, 0, 1, 0)
	if d < 110 || d > 112 {
		t.Errorf("expected ~111 km, got %v", d)
	}
}
