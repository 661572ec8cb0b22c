// Package device holds the admittance stamps for the two element
// kinds the reducer works with. Node index 0 is ground.
package device

import "pireduce/pkg/matrix"

type Device interface {
	GetName() string
	GetType() string
	Stamp(m matrix.DeviceMatrix, omega float64) error
}
