package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pireduce/pkg/device"
)

func TestDrivingPointAdmittanceSingleStage(t *testing.T) {
	// 1k into 1u at omega = 1/RC: Y = 1/(R - j/(omega*C))
	// = 1/(1000 - j1000) = 5e-4 + j5e-4.
	devices := []device.Device{
		device.NewResistor("R1", 1, 2, 1e3),
		device.NewCapacitor("C1", 2, 0, 1e-6),
	}

	y, err := drivingPointAdmittance(devices, 2, 1, 1e3)
	require.NoError(t, err)
	assert.InEpsilon(t, 5e-4, real(y), 1e-6)
	assert.InEpsilon(t, 5e-4, imag(y), 1e-6)
}

func TestDrivingPointAdmittancePureCapacitor(t *testing.T) {
	devices := []device.Device{
		device.NewCapacitor("C1", 1, 0, 1e-12),
	}

	y, err := drivingPointAdmittance(devices, 1, 1, 1e9)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, real(y), 1e-9)
	assert.InEpsilon(t, 1e-3, imag(y), 1e-6)
}
