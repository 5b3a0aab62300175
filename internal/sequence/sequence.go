package sequence

import (
	"iter"

	"github.com/rxtech-lab/argo-signal/internal/types"
	"github.com/rxtech-lab/argo-signal/pkg/errors"
)

// closeColumn is the position of the close feature in every row.
var closeColumn = types.FeatureIndex(types.FeatureClose)

// Sequencer turns normalized feature rows into supervised samples: the L rows
// before a position predict the close at that position.
type Sequencer struct {
	rows      []types.FeatureVector
	positions []int
	length    int
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithPositions gives the source observation index of every row, as recorded
// in FeatureFrame.Positions. Samples whose window and target are not drawn
// from consecutive observations are skipped.
func WithPositions(positions []int) Option {
	return func(s *Sequencer) {
		s.positions = positions
	}
}

// New creates a sequencer over rows with window length l.
func New(rows []types.FeatureVector, l int, opts ...Option) (*Sequencer, error) {
	if l < 1 {
		return nil, errors.Newf(errors.ErrCodeInvalidSequenceLength, "sequence length must be at least 1, got %d", l)
	}

	s := &Sequencer{rows: rows, length: l}
	for _, opt := range opts {
		opt(s)
	}

	if s.positions != nil && len(s.positions) != len(rows) {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "got %d positions for %d rows", len(s.positions), len(rows))
	}

	return s, nil
}

// Length returns the window length.
func (s *Sequencer) Length() int {
	return s.length
}

// Count returns the number of samples: n - L, or zero when n <= L, less the
// windows spanning a gap.
func (s *Sequencer) Count() int {
	if s.positions == nil {
		return max(0, len(s.rows)-s.length)
	}

	n := 0
	for i := s.length; i < len(s.rows); i++ {
		if s.contiguous(i) {
			n++
		}
	}

	return n
}

// contiguous reports whether rows i-L..i come from consecutive observations.
func (s *Sequencer) contiguous(i int) bool {
	if s.positions == nil {
		return true
	}

	return s.positions[i]-s.positions[i-s.length] == s.length
}

// Samples yields one sample per target position in chronological order.
// The sequence can be ranged over any number of times.
func (s *Sequencer) Samples() iter.Seq[types.Sample] {
	return func(yield func(types.Sample) bool) {
		for i := s.length; i < len(s.rows); i++ {
			if !s.contiguous(i) {
				continue
			}

			sample := types.Sample{
				Index:  i,
				Window: s.rows[i-s.length : i : i],
				Target: s.rows[i][closeColumn],
			}

			if !yield(sample) {
				return
			}
		}
	}
}

// Collect materializes every sample.
func (s *Sequencer) Collect() []types.Sample {
	out := make([]types.Sample, 0, s.Count())
	for sample := range s.Samples() {
		out = append(out, sample)
	}

	return out
}

// Split divides samples chronologically, the last testRatio share being held out.
func Split(samples []types.Sample, testRatio float64) (train, test []types.Sample, err error) {
	if testRatio < 0 || testRatio >= 1 {
		return nil, nil, errors.Newf(errors.ErrCodeInvalidParameter, "test ratio must be in [0, 1), got %v", testRatio)
	}

	cut := int(float64(len(samples)) * (1 - testRatio))

	return samples[:cut:cut], samples[cut:], nil
}
