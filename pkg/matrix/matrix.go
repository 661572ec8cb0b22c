package matrix

import (
	"fmt"

	"github.com/edp1096/sparse"
)

// NodalMatrix is a complex nodal admittance system over the sparse
// solver. Indices are 1-based; index 0 is ground and is never stored.
type NodalMatrix struct {
	Size     int
	matrix   *sparse.Matrix
	rhs      []float64
	rhsImag  []float64
	solution []float64
	config   *sparse.Configuration
}

func New(size int) (*NodalMatrix, error) {
	config := &sparse.Configuration{
		Real:                    true,
		Complex:                 true,
		SeparatedComplexVectors: false,
		Expandable:              true,
		Translate:               false,
		ModifiedNodal:           true,
		TiesMultiplier:          5,
		PrinterWidth:            140,
		Annotate:                0,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %v", err)
	}

	// Interleaved complex vectors, 1-based indexing.
	vectorSize := (size + 1) * 2
	return &NodalMatrix{
		Size:     size,
		matrix:   mat,
		rhs:      make([]float64, vectorSize),
		rhsImag:  make([]float64, 1),
		solution: make([]float64, vectorSize),
		config:   config,
	}, nil
}

func (m *NodalMatrix) AddComplexElement(i, j int, real, imag float64) {
	if i <= 0 || j <= 0 || i > m.Size || j > m.Size {
		return
	}
	element := m.matrix.GetElement(int64(i), int64(j))
	element.Real += real
	element.Imag += imag
}

func (m *NodalMatrix) AddComplexRHS(i int, real, imag float64) {
	if i <= 0 || i > m.Size {
		return
	}
	m.rhs[2*i] += real
	m.rhs[2*i+1] += imag
}

func (m *NodalMatrix) Clear() {
	m.matrix.Clear()
	for i := range m.rhs {
		m.rhs[i] = 0
	}
}

func (m *NodalMatrix) Solve() error {
	if err := m.matrix.Factor(); err != nil {
		return fmt.Errorf("matrix factorization failed: %v", err)
	}

	var err error
	m.solution, _, err = m.matrix.SolveComplex(m.rhs, m.rhsImag)
	if err != nil {
		return fmt.Errorf("matrix solve failed: %v", err)
	}
	return nil
}

// ComplexSolution returns the solved value at a 1-based node index.
// With interleaved complex vectors the solver places the real part at
// 2*i and the imaginary part at 2*i+1.
func (m *NodalMatrix) ComplexSolution(i int) (float64, float64) {
	if i <= 0 || i > m.Size {
		return 0, 0
	}
	return m.solution[2*i], m.solution[2*i+1]
}

func (m *NodalMatrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
	}
}
