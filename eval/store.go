package eval

import "fmt"

// SetCoefficients writes alpha, indexed by grid sequence number, into the
// flat store. Slots without a stored point are set to NaN.
func (e *Eval[T]) SetCoefficients(alpha []T) error {
	if e.layout == nil {
		return ErrNotPrepared
	}
	if len(alpha) != len(e.slots) {
		return fmt.Errorf("%d coefficients, grid size %d: %w", len(alpha), len(e.slots), ErrDimMismatch)
	}
	e.fillVirtual(0)
	for seq, slot := range e.slots {
		e.flat[slot] = alpha[seq]
	}
	return nil
}

// Unflatten copies the stored coefficients into result in sequence order.
func (e *Eval[T]) Unflatten(result []T) error {
	if e.layout == nil {
		return ErrNotPrepared
	}
	if len(result) != len(e.slots) {
		return fmt.Errorf("result length %d, grid size %d: %w", len(result), len(e.slots), ErrDimMismatch)
	}
	for seq, slot := range e.slots {
		result[seq] = e.flat[slot]
	}
	return nil
}

// Surplus returns the stored coefficient of grid point seq. It panics if
// the last Prepare failed.
func (e *Eval[T]) Surplus(seq int) T { return e.flat[e.Slot(seq)] }

// SetSurplus sets the stored coefficient of grid point seq. It panics if
// the last Prepare failed.
func (e *Eval[T]) SetSurplus(seq int, v T) { e.flat[e.Slot(seq)] = v }

// Slot returns the flat store position of grid point seq. It panics if the
// last Prepare failed.
func (e *Eval[T]) Slot(seq int) int {
	if e.layout == nil {
		panic("eval: layout not prepared")
	}
	return e.slots[seq]
}
