package bank

import "github.com/mr01settle/paycheck/mr01"

// intersects reports whether tx1 and tx2 claim overlapping coin intervals:
// picking the interval with the smaller lower bound as fst, they intersect
// iff fst.hi >= snd.lo.
func intersects(tx1, tx2 *mr01.Transaction) bool {
	lo1, hi1 := tx1.Interval()
	lo2, hi2 := tx2.Interval()

	fstHi, sndLo := hi1, lo2
	if lo2 < lo1 {
		fstHi, sndLo = hi2, lo1
	}
	return sndLo <= fstHi
}
