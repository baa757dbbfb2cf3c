package provisioning

import (
	"sort"
	"time"

	"github.com/axonect/quotacycle/internal/shared/biztime"
)

// Allocation is the outcome of provisioning one service instance for its new cycle.
type Allocation struct {
	// Fresh holds one bucket per template at the template's initial quota.
	Fresh []*BucketInstance
	// CarriedForward holds the rollover buckets created this cycle.
	CarriedForward []*BucketInstance
	// Trimmed holds existing carry-forward buckets whose balance was reduced to honour the total cap.
	Trimmed []*BucketInstance
	// MissingPrevious lists carry-forward template bucket ids with no previous bucket to roll over.
	MissingPrevious []string
}

// Created returns every bucket instance that did not exist before this cycle.
func (a *Allocation) Created() []*BucketInstance {
	out := make([]*BucketInstance, 0, len(a.Fresh)+len(a.CarriedForward))
	out = append(out, a.Fresh...)
	return append(out, a.CarriedForward...)
}

// ToSave returns trimmed and created buckets in a single batch.
func (a *Allocation) ToSave() []*BucketInstance {
	out := make([]*BucketInstance, 0, len(a.Trimmed)+len(a.Fresh)+len(a.CarriedForward))
	out = append(out, a.Trimmed...)
	return append(out, a.Created()...)
}

// Allocate provisions svc, which must already have been advanced into its new cycle.
//
// existing are the service's bucket instances before this cycle, tomorrow is the business
// date the cycle starts on. Carry-forward buckets expiring tomorrow are left out of the
// total cap since they are about to lapse.
func Allocate(svc *ServiceInstance, templates []*PlanToBucket, existing []*BucketInstance, catalog Catalog, tomorrow time.Time) (*Allocation, error) {
	if len(existing) == 0 {
		return nil, ErrNoExistingBuckets
	}
	if len(templates) == 0 {
		return nil, ErrNoTemplates
	}

	a := &Allocation{}
	for _, tpl := range templates {
		bucket, qos, err := catalog.Resolve(tpl.BucketID)
		if err != nil {
			return nil, err
		}
		a.Fresh = append(a.Fresh, NewBucketInstance(svc, tpl, bucket, qos))
	}

	activeCF := ActiveCarryForwardBuckets(existing, tomorrow)
	trimmed := make(map[*BucketInstance]struct{})
	for _, tpl := range templates {
		if !tpl.CarryForward {
			continue
		}
		prev := SelectPreviousBucket(existing, tpl.BucketID)
		if prev == nil {
			a.MissingPrevious = append(a.MissingPrevious, tpl.BucketID)
			continue
		}
		if prev.CurrentBalance() == 0 {
			continue
		}

		bucket, qos, err := catalog.Resolve(tpl.BucketID)
		if err != nil {
			return nil, err
		}
		cf, err := NewCarryForwardBucketInstance(svc, tpl, bucket, qos, prev.CurrentBalance())
		if err != nil {
			return nil, err
		}

		for _, b := range TrimCarryForward(activeCF[tpl.BucketID], cf.CurrentBalance(), tpl.TotalCarryForward) {
			if _, seen := trimmed[b]; !seen {
				trimmed[b] = struct{}{}
				a.Trimmed = append(a.Trimmed, b)
			}
		}
		a.CarriedForward = append(a.CarriedForward, cf)
	}
	return a, nil
}

// SelectPreviousBucket picks the bucket a carry-forward rolls over from: the most recently
// created non carry-forward instance of bucketID.
func SelectPreviousBucket(existing []*BucketInstance, bucketID string) *BucketInstance {
	var prev *BucketInstance
	for _, b := range existing {
		if b.BucketID() != bucketID || b.IsCarryForward() {
			continue
		}
		if prev == nil || b.ID() > prev.ID() {
			prev = b
		}
	}
	return prev
}

// ActiveCarryForwardBuckets groups carry-forward buckets by bucket id, skipping those that
// expire on tomorrow's date, each group ordered oldest expiration first.
func ActiveCarryForwardBuckets(existing []*BucketInstance, tomorrow time.Time) map[string][]*BucketInstance {
	out := make(map[string][]*BucketInstance)
	for _, b := range existing {
		if !b.IsCarryForward() || biztime.SameDate(b.Expiration(), tomorrow) {
			continue
		}
		out[b.BucketID()] = append(out[b.BucketID()], b)
	}
	for _, list := range out {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Expiration().Equal(list[j].Expiration()) {
				return list[i].ID() < list[j].ID()
			}
			return list[i].Expiration().Before(list[j].Expiration())
		})
	}
	return out
}

// CarriedBalance caps a leftover balance at maxCarryForward. A non-positive cap carries nothing.
func CarriedBalance(previous, maxCarryForward int64) int64 {
	return min(previous, max(maxCarryForward, 0))
}

// TrimCarryForward reduces existing carry-forward balances, oldest first, until the sum of
// newBalance and the existing balances no longer exceeds limit. The new bucket is never
// trimmed. existing must be ordered oldest expiration first; the touched buckets are returned.
// A non-positive limit leaves no room for existing balances.
func TrimCarryForward(existing []*BucketInstance, newBalance, limit int64) []*BucketInstance {
	if len(existing) == 0 {
		return nil
	}
	limit = max(limit, 0)

	remaining := newBalance
	for _, b := range existing {
		remaining += b.CurrentBalance()
	}

	var touched []*BucketInstance
	for _, b := range existing {
		if remaining <= limit {
			break
		}
		if b.CurrentBalance() == 0 {
			continue
		}
		excess := remaining - limit
		if excess < b.CurrentBalance() {
			b.reduceBalance(excess)
			touched = append(touched, b)
			break
		}
		remaining -= b.CurrentBalance()
		b.reduceBalance(b.CurrentBalance())
		touched = append(touched, b)
	}
	return touched
}
