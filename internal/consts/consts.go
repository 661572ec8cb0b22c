package consts

const (
	RelTol           = 1e-9  // relative tolerance for non-physical component detection
	Gmin             = 1e-12 // shunt conductance on diagonals during verification solves
	ShortConductance = 1e12  // stand-in conductance for zero-ohm resistors
)
