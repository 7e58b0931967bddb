package marionette

import (
	"sync/atomic"
)

// globalDebug enables extra consistency checks during skeleton construction
// and cache rebuilds. Off by default; the checks only log.
var globalDebug atomic.Bool

// SetDebug enables or disables debug checks. Findings are reported through
// Logger at warn level, so a logger must be set to see them.
func SetDebug(enabled bool) {
	globalDebug.Store(enabled)
}

func debugEnabled() bool { return globalDebug.Load() }

func debugWarn(msg string, args ...any) {
	Logger().Warn("marionette: "+msg, args...)
}

// debugMaxBoneDepth is the bone chain depth above which a warning is logged.
const debugMaxBoneDepth = 32

// debugCheckBoneDepth warns when a bone chain is deep enough to suggest a
// mis-parented skeleton.
func debugCheckBoneDepth(s *Skeleton) {
	for _, b := range s.Bones {
		depth := 0
		for p := b; p != nil; p = p.Parent() {
			depth++
		}
		if depth > debugMaxBoneDepth {
			debugWarn("bone chain is deep", "bone", b.Data.Name, "depth", depth, "threshold", debugMaxBoneDepth)
		}
	}
}

// debugCheckConstraintOrder warns on duplicated or missing constraint
// orders. Constraints sharing an order are scheduled in type order.
func debugCheckConstraintOrder(d *SkeletonData) {
	orders := make(map[int]string)
	for _, c := range d.constraints() {
		b := c.base()
		if prev, ok := orders[b.Order]; ok {
			debugWarn("constraint order is shared", "order", b.Order, "constraint", b.Name, "other", prev)
			continue
		}
		orders[b.Order] = b.Name
	}
	for i := range len(orders) {
		if _, ok := orders[i]; !ok {
			debugWarn("constraint order has a gap", "order", i)
		}
	}
}
