package matrix

// DeviceMatrix is the stamping surface devices write into.
type DeviceMatrix interface {
	AddComplexElement(i, j int, real, imag float64) // 1-based indexing
	AddComplexRHS(i int, real, imag float64)
}
