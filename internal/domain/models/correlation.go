package models

import "math"

// CorrelationMatrix is a symmetric symbol x symbol matrix of return
// correlations. Undefined cells hold NaN.
type CorrelationMatrix struct {
	Symbols []string
	index   map[string]int
	values  [][]float64
}

// NewCorrelationMatrix returns a matrix over symbols with every cell undefined.
func NewCorrelationMatrix(symbols []string) *CorrelationMatrix {
	m := &CorrelationMatrix{
		Symbols: append([]string(nil), symbols...),
		index:   make(map[string]int, len(symbols)),
		values:  make([][]float64, len(symbols)),
	}
	for i, s := range symbols {
		m.index[s] = i
		row := make([]float64, len(symbols))
		for j := range row {
			row[j] = math.NaN()
		}
		m.values[i] = row
	}
	return m
}

// Len returns the number of symbols.
func (m *CorrelationMatrix) Len() int { return len(m.Symbols) }

// Has reports whether symbol is a row of the matrix.
func (m *CorrelationMatrix) Has(symbol string) bool {
	_, ok := m.index[symbol]
	return ok
}

// SetAt stores v at (i, j) and (j, i).
func (m *CorrelationMatrix) SetAt(i, j int, v float64) {
	m.values[i][j] = v
	m.values[j][i] = v
}

// At returns the raw cell value, NaN when undefined.
func (m *CorrelationMatrix) At(i, j int) float64 { return m.values[i][j] }

// Get returns the correlation between a and b, or false when either symbol
// is unknown or the cell is undefined.
func (m *CorrelationMatrix) Get(a, b string) (float64, bool) {
	i, ok := m.index[a]
	if !ok {
		return 0, false
	}
	j, ok := m.index[b]
	if !ok {
		return 0, false
	}
	v := m.values[i][j]
	if math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Absolute returns a copy holding |corr| in every defined cell.
func (m *CorrelationMatrix) Absolute() *CorrelationMatrix {
	out := NewCorrelationMatrix(m.Symbols)
	for i := range m.values {
		for j, v := range m.values[i] {
			out.values[i][j] = math.Abs(v)
		}
	}
	return out
}

// MeanOffDiagonal averages the defined cells of the upper triangle.
// It returns false when no off-diagonal cell is defined.
func (m *CorrelationMatrix) MeanOffDiagonal() (float64, bool) {
	sum, n := 0.0, 0
	for i := 0; i < len(m.values); i++ {
		for j := i + 1; j < len(m.values); j++ {
			if v := m.values[i][j]; !math.IsNaN(v) {
				sum += v
				n++
			}
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
