package liveness_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/xornet-io/vault/cluster/meta"
	"github.com/xornet-io/vault/liveness"
)

func name(b byte) meta.XorName {
	var n meta.XorName
	n[len(n)-1] = b
	return n
}

func msgID(b byte) meta.MessageId {
	var m meta.MessageId
	m[len(m)-1] = b
	return m
}

func addr(b byte) meta.BlobAddress {
	return meta.BlobAddress{Name: name(b), Variant: meta.VariantPublic}
}

var _ = Describe("Tracker", func() {
	var t *liveness.Tracker

	BeforeEach(func() {
		t = liveness.New()
	})

	Describe("new_write / new_read idempotence", func() {
		It("returns true exactly once for a given msgID", func() {
			targets := []meta.XorName{name(1), name(2)}
			Expect(t.NewWrite(msgID(1), nil, addr(1), targets)).To(BeTrue())
			Expect(t.NewWrite(msgID(1), nil, addr(1), targets)).To(BeFalse())
		})

		It("returns true exactly once for a given msgID on the read side too", func() {
			origin := meta.EndUser{}
			Expect(t.NewRead(msgID(2), addr(2), origin, []meta.XorName{name(3)})).To(BeTrue())
			Expect(t.NewRead(msgID(2), addr(2), origin, []meta.XorName{name(3)})).To(BeFalse())
		})
	})

	Describe("pending-op accounting", func() {
		It("increments pending_ops for every target on insert", func() {
			targets := []meta.XorName{name(1), name(2), name(3)}
			t.NewWrite(msgID(1), nil, addr(1), targets)
			for _, n := range targets {
				Expect(t.PendingOps(n)).To(Equal(1))
			}
		})

		It("decrements as each target reports and completes the op once empty", func() {
			targets := []meta.XorName{name(1), name(2)}
			t.NewWrite(msgID(1), nil, addr(1), targets)
			_, _, ok := t.RecordAdultWriteLiveness(msgID(1), name(1))
			Expect(ok).To(BeTrue())
			Expect(t.PendingOps(name(1))).To(Equal(0))
			Expect(t.PendingOps(name(2))).To(Equal(1))

			_, _, ok = t.RecordAdultWriteLiveness(msgID(1), name(2))
			Expect(ok).To(BeTrue())
			Expect(t.PendingOps(name(2))).To(Equal(0))

			// op is gone: a third call for an unrelated src finds nothing live
			_, _, ok = t.RecordAdultWriteLiveness(msgID(1), name(3))
			Expect(ok).To(BeFalse())
		})

		It("never goes negative (saturating decrement)", func() {
			t.RemoveTarget(msgID(9), name(1))
			Expect(t.PendingOps(name(1))).To(Equal(0))
		})
	})

	Describe("read vs write discrimination", func() {
		It("RecordAdultWriteLiveness returns ok=false for a Read op", func() {
			origin := meta.EndUser{}
			t.NewRead(msgID(1), addr(1), origin, []meta.XorName{name(1)})
			_, _, ok := t.RecordAdultWriteLiveness(msgID(1), name(1))
			Expect(ok).To(BeFalse())
		})

		It("RecordAdultReadLiveness returns ok=false for a Write op", func() {
			t.NewWrite(msgID(1), nil, addr(1), []meta.XorName{name(1)})
			_, _, ok := t.RecordAdultReadLiveness(msgID(1), name(1), true)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("ClosestAdults", func() {
		It("tracks every write target as an adult", func() {
			targets := []meta.XorName{name(1), name(2), name(3), name(4), name(5)}
			t.NewWrite(msgID(1), nil, addr(1), targets)
			Expect(t.TrackedAdults()).To(HaveLen(5))
		})
	})

	Describe("section churn (S5)", func() {
		It("drops absent members from every live op and from pending_ops", func() {
			targets := []meta.XorName{name(1), name(2), name(3), name(4)} // B,C,D,E analogue
			t.NewWrite(msgID(1), nil, addr(1), targets)

			// C (name(2)) leaves the section.
			t.RetainMembersOnly([]meta.XorName{name(0), name(1), name(3), name(4), name(5)})
			Expect(t.PendingOps(name(2))).To(Equal(0))

			_, _, ok := t.RecordAdultWriteLiveness(msgID(1), name(1))
			Expect(ok).To(BeTrue())
			_, _, ok = t.RecordAdultWriteLiveness(msgID(1), name(3))
			Expect(ok).To(BeTrue())
			_, _, ok = t.RecordAdultWriteLiveness(msgID(1), name(4))
			Expect(ok).To(BeTrue())
		})
	})

	Describe("find_unresponsive_adults (S4)", func() {
		It("requires both the absolute floor and the ratio to trigger", func() {
			tr := liveness.NewWithTunables(2, 10, 0.1)
			a, b, c := name(1), name(2), name(3)

			// Seed a with 120 pending ops and neighbours with 8,9 -
			// below the M=10 floor, so nothing should trigger yet.
			seedPending(tr, a, 120)
			seedPending(tr, b, 8)
			seedPending(tr, c, 9)
			tr.RecomputeClosestAdults()
			Expect(findNames(tr.FindUnresponsiveAdults())).NotTo(ContainElement(a))

			// Push neighbours past the floor: 140*0.1=14 > 11.
			seedPending(tr, a, 20) // a: 140
			seedPending(tr, b, 3)  // b: 11
			tr.RecomputeClosestAdults()
			Expect(findNames(tr.FindUnresponsiveAdults())).To(ContainElement(a))
		})

		It("monotonicity: adding ops to a neighbour can only remove a, never add it (invariant 5)", func() {
			tr := liveness.NewWithTunables(2, 10, 0.1)
			a, b, c := name(1), name(2), name(3)
			seedPending(tr, a, 200)
			seedPending(tr, b, 11)
			seedPending(tr, c, 11)
			tr.RecomputeClosestAdults()
			Expect(findNames(tr.FindUnresponsiveAdults())).To(ContainElement(a))

			seedPending(tr, b, 50) // neighbour catches up
			Expect(findNames(tr.FindUnresponsiveAdults())).NotTo(ContainElement(a))
		})
	})
})

// seedPending drives pending_ops[n] up by `delta` using distinct
// single-target write ops, which is the only public way to move the
// counter (mirrors how real fan-outs accumulate it).
func seedPending(t *liveness.Tracker, n meta.XorName, delta int) {
	base := t.PendingOps(n)
	for i := 0; i < delta; i++ {
		k := base + i
		var id meta.MessageId
		copy(id[:], n[:])
		id[0] = byte(k)
		id[1] = byte(k >> 8)
		t.NewWrite(id, nil, meta.BlobAddress{Name: n}, []meta.XorName{n})
	}
}

func findNames(us []liveness.Unresponsive) []meta.XorName {
	out := make([]meta.XorName, len(us))
	for i, u := range us {
		out[i] = u.Name
	}
	return out
}
