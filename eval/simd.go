package eval

import (
	"unsafe"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/klauspost/cpuid/v2"
)

// groupsPerBatch is the number of vector-width groups of data points that
// make up one kernel batch.
const groupsPerBatch = 4

// vectorBytes returns the width in bytes of the widest vector registers the
// CPU offers for floating point arithmetic.
func vectorBytes() int {
	switch {
	case cpuid.CPU.Has(cpuid.AVX512F):
		return 64
	case cpuid.CPU.Has(cpuid.AVX2), cpuid.CPU.Has(cpuid.AVX):
		return 32
	default:
		// SSE2 and NEON/ASIMD both provide 128-bit registers
		return 16
	}
}

// laneCount returns how many T values fit in one vector register.
func laneCount[T hwy.FloatsNative]() int {
	var zero T
	n := vectorBytes() / int(unsafe.Sizeof(zero))
	return max(n, 1)
}

// batchSize returns the number of data points a kernel batch covers. Data
// ranges handed to Multiply and MultiplyTranspose must be multiples of it.
func batchSize[T hwy.FloatsNative]() int {
	return groupsPerBatch * laneCount[T]()
}

// roundUp rounds n up to a multiple of m.
func roundUp(n, m int) int { return (n + m - 1) / m * m }

// hatProduct computes prod[k] = prev[k] * max(0, 1-|h*x[k]-idx[k]|) for all
// k in [0, len(prod)). All slices must have a length that is a multiple of
// hwy.MaxLanes[T]().
func hatProduct[T hwy.FloatsNative](h T, x, idx, prev, prod []T) {
	lanes := hwy.MaxLanes[T]()
	vh := hwy.Set[T](h)
	one := hwy.Set[T](1)
	zero := hwy.Zero[T]()
	for off := 0; off < len(prod); off += lanes {
		diff := hwy.Sub(hwy.Mul(vh, hwy.Load(x[off:])), hwy.Load(idx[off:]))
		// 1-|diff| as min(1-diff, 1+diff)
		phi := hwy.Max(zero, hwy.Min(hwy.Sub(one, diff), hwy.Add(one, diff)))
		hwy.Store(hwy.Mul(hwy.Load(prev[off:]), phi), prod[off:])
	}
}
