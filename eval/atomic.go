package eval

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/ajroetker/go-highway/hwy"
)

// atomicAdd adds v to *p with a compare-and-swap loop on the value's bit
// pattern. Two workers may target the same flat slot whenever the supports
// of their data points overlap.
func atomicAdd[T hwy.FloatsNative](p *T, v T) {
	if unsafe.Sizeof(*p) == 4 {
		addr := (*uint32)(unsafe.Pointer(p))
		for {
			old := atomic.LoadUint32(addr)
			sum := math.Float32bits(math.Float32frombits(old) + float32(v))
			if atomic.CompareAndSwapUint32(addr, old, sum) {
				return
			}
		}
	}
	addr := (*uint64)(unsafe.Pointer(p))
	for {
		old := atomic.LoadUint64(addr)
		sum := math.Float64bits(math.Float64frombits(old) + float64(v))
		if atomic.CompareAndSwapUint64(addr, old, sum) {
			return
		}
	}
}

func isNaN[T hwy.FloatsNative](v T) bool { return v != v }

// atomicLoad reads *p while other workers may be adding to it.
func atomicLoad[T hwy.FloatsNative](p *T) T {
	if unsafe.Sizeof(*p) == 4 {
		return T(math.Float32frombits(atomic.LoadUint32((*uint32)(unsafe.Pointer(p)))))
	}
	return T(math.Float64frombits(atomic.LoadUint64((*uint64)(unsafe.Pointer(p)))))
}
