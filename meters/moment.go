package meters

import (
	"errors"
	"math"
)

// MomentMeter aggregates the raw moments of a stream of sample batches up to
// a configured order. Moments are averaged over all samples seen so far, so
// batches of different sizes combine correctly.
type MomentMeter struct {
	maxMoment int
	moments   []float64
	count     uint64
}

// NewMomentMeter returns a meter tracking raw moments 1..maxMoment.
func NewMomentMeter(maxMoment int) *MomentMeter {
	if maxMoment < 1 {
		maxMoment = 1
	}
	return &MomentMeter{
		maxMoment: maxMoment,
		moments:   make([]float64, maxMoment),
	}
}

// Update folds one batch of samples into the running moments.
func (m *MomentMeter) Update(samples []float64) {
	if len(samples) == 0 {
		return
	}
	batch := float64(len(samples))
	full := float64(m.count) + batch

	for order := 0; order < m.maxMoment; order++ {
		var batchMoment float64
		for _, s := range samples {
			batchMoment += math.Pow(s, float64(order+1))
		}
		batchMoment /= batch
		m.moments[order] = (float64(m.count)*m.moments[order] + batch*batchMoment) / full
	}
	m.count += uint64(len(samples))
}

// Moments returns the raw moments accumulated so far, lowest order first.
func (m *MomentMeter) Moments() []float64 {
	out := make([]float64, len(m.moments))
	copy(out, m.moments)
	return out
}

// Count returns the number of samples seen.
func (m *MomentMeter) Count() uint64 {
	return m.count
}

// Reset discards all accumulated state.
func (m *MomentMeter) Reset() {
	m.moments = make([]float64, m.maxMoment)
	m.count = 0
}

// Cumulants converts the raw moments to cumulants. Conversion is only
// implemented for orders one (mean) and two (mean, variance).
func (m *MomentMeter) Cumulants() ([]float64, error) {
	switch m.maxMoment {
	case 1:
		return m.Moments(), nil
	case 2:
		mean := m.moments[0]
		return []float64{mean, m.moments[1] - mean*mean}, nil
	default:
		return nil, errors.New("cumulant conversion is only implemented for orders <= 2")
	}
}
