package radio

import (
	"github.com/brocaar/lorawan"

	"github.com/R3DPanda1/LWN-PHY-Sim/simulator/environment"
)

type fixedGaussian float64

func (g fixedGaussian) NormFloat64() float64 { return float64(g) }

type fakeEntity struct {
	eui  lorawan.EUI64
	pos  environment.Position
	role Role
	got  []Transmission
}

func (f *fakeEntity) EUI() lorawan.EUI64              { return f.eui }
func (f *fakeEntity) Position() environment.Position { return f.pos }
func (f *fakeEntity) Role() Role                      { return f.role }
func (f *fakeEntity) Receive(tx Transmission)         { f.got = append(f.got, tx) }

func newEntity(id byte, x, y int, role Role) *fakeEntity {
	return &fakeEntity{
		eui:  lorawan.EUI64{0, 0, 0, 0, 0, 0, 0, id},
		pos:  environment.Position{X: x, Y: y},
		role: role,
	}
}
