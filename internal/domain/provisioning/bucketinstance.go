package provisioning

import (
	"fmt"
	"time"

	"github.com/axonect/quotacycle/internal/shared/biztime"
)

// BucketInstance is a concrete quota allocation for one service and one cycle.
type BucketInstance struct {
	id                     int64
	bucketID               string
	serviceID              int64
	bucketType             string
	rule                   string
	priority               int64
	initialBalance         int64
	currentBalance         int64
	usage                  int64
	carryForward           bool
	maxCarryForward        int64
	totalCarryForward      int64
	carryForwardValidity   int
	timeWindow             string
	consumptionLimit       int64
	consumptionLimitWindow string
	expiration             time.Time
	updatedAt              time.Time
}

// NewBucketInstance instantiates a fresh cycle bucket from a template. Balances start at the
// template's initial quota and the bucket lives until the service expires.
func NewBucketInstance(svc *ServiceInstance, tpl *PlanToBucket, bucket *Bucket, qos *QOSProfile) *BucketInstance {
	return &BucketInstance{
		bucketID:               bucket.BucketID,
		serviceID:              svc.ID(),
		bucketType:             bucket.BucketType,
		rule:                   qos.BNGCode,
		priority:               bucket.Priority,
		initialBalance:         tpl.InitialQuota,
		currentBalance:         tpl.InitialQuota,
		carryForward:           tpl.CarryForward,
		maxCarryForward:        tpl.MaxCarryForward,
		totalCarryForward:      tpl.TotalCarryForward,
		carryForwardValidity:   tpl.CarryForwardValidity,
		timeWindow:             bucket.TimeWindow,
		consumptionLimit:       tpl.ConsumptionLimit,
		consumptionLimitWindow: tpl.ConsumptionLimitWindow,
		expiration:             svc.ExpiryDate(),
	}
}

// NewCarryForwardBucketInstance rolls carried into a carry-forward bucket, capped at the
// template's MaxCarryForward and valid for CarryForwardValidity days from the service start.
func NewCarryForwardBucketInstance(svc *ServiceInstance, tpl *PlanToBucket, bucket *Bucket, qos *QOSProfile, carried int64) (*BucketInstance, error) {
	start := svc.ServiceStartDate()
	if start == nil {
		return nil, fmt.Errorf("service %d has no service start date", svc.ID())
	}

	b := NewBucketInstance(svc, tpl, bucket, qos)
	balance := CarriedBalance(carried, tpl.MaxCarryForward)
	b.bucketType = BucketTypeCarryForward
	b.carryForward = false
	b.initialBalance = balance
	b.currentBalance = balance
	b.expiration = biztime.AddDays(*start, tpl.CarryForwardValidity)
	return b, nil
}

// ReconstructBucketInstance reconstructs a bucket instance from persistence
func ReconstructBucketInstance(
	id int64,
	bucketID string,
	serviceID int64,
	bucketType, rule string,
	priority, initialBalance, currentBalance, usage int64,
	carryForward bool,
	maxCarryForward, totalCarryForward int64,
	carryForwardValidity int,
	timeWindow string,
	consumptionLimit int64,
	consumptionLimitWindow string,
	expiration, updatedAt time.Time,
) *BucketInstance {
	return &BucketInstance{
		id:                     id,
		bucketID:               bucketID,
		serviceID:              serviceID,
		bucketType:             bucketType,
		rule:                   rule,
		priority:               priority,
		initialBalance:         initialBalance,
		currentBalance:         currentBalance,
		usage:                  usage,
		carryForward:           carryForward,
		maxCarryForward:        maxCarryForward,
		totalCarryForward:      totalCarryForward,
		carryForwardValidity:   carryForwardValidity,
		timeWindow:             timeWindow,
		consumptionLimit:       consumptionLimit,
		consumptionLimitWindow: consumptionLimitWindow,
		expiration:             expiration,
		updatedAt:              updatedAt,
	}
}

func (b *BucketInstance) ID() int64                      { return b.id }
func (b *BucketInstance) BucketID() string               { return b.bucketID }
func (b *BucketInstance) ServiceID() int64               { return b.serviceID }
func (b *BucketInstance) BucketType() string             { return b.bucketType }
func (b *BucketInstance) Rule() string                   { return b.rule }
func (b *BucketInstance) Priority() int64                { return b.priority }
func (b *BucketInstance) InitialBalance() int64          { return b.initialBalance }
func (b *BucketInstance) CurrentBalance() int64          { return b.currentBalance }
func (b *BucketInstance) Usage() int64                   { return b.usage }
func (b *BucketInstance) CarryForward() bool             { return b.carryForward }
func (b *BucketInstance) MaxCarryForward() int64         { return b.maxCarryForward }
func (b *BucketInstance) TotalCarryForward() int64       { return b.totalCarryForward }
func (b *BucketInstance) CarryForwardValidity() int      { return b.carryForwardValidity }
func (b *BucketInstance) TimeWindow() string             { return b.timeWindow }
func (b *BucketInstance) ConsumptionLimit() int64        { return b.consumptionLimit }
func (b *BucketInstance) ConsumptionLimitWindow() string { return b.consumptionLimitWindow }
func (b *BucketInstance) Expiration() time.Time          { return b.expiration }
func (b *BucketInstance) UpdatedAt() time.Time           { return b.updatedAt }

// IsCarryForward reports whether the bucket holds rolled-over balance.
func (b *BucketInstance) IsCarryForward() bool {
	return b.bucketType == BucketTypeCarryForward
}

// SetID is called by the repository once the row is inserted.
func (b *BucketInstance) SetID(id int64) error {
	if b.id != 0 {
		return fmt.Errorf("bucket instance ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("bucket instance ID cannot be zero")
	}
	b.id = id
	return nil
}

func (b *BucketInstance) reduceBalance(by int64) {
	b.currentBalance -= by
	b.updatedAt = biztime.Now()
}
