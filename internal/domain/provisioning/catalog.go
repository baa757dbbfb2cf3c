package provisioning

import "strconv"

// Plan is the commercial offer a service instance subscribes to.
type Plan struct {
	ID              int64
	PlanID          string
	PlanName        string
	PlanType        string
	RecurringFlag   bool
	RecurringPeriod string
	Status          string
}

// PlanToBucket is one quota template of a plan. MaxCarryForward and TotalCarryForward are
// always enforced; zero carries nothing over.
type PlanToBucket struct {
	ID                     int64
	PlanID                 string
	BucketID               string
	InitialQuota           int64
	CarryForward           bool
	MaxCarryForward        int64
	TotalCarryForward      int64
	CarryForwardValidity   int
	ConsumptionLimit       int64
	ConsumptionLimitWindow string
}

// Bucket is the catalog definition a template instantiates.
type Bucket struct {
	BucketID   string
	BucketName string
	BucketType string
	QOSID      int64
	Priority   int64
	TimeWindow string
}

// QOSProfile carries the BNG rule code stamped onto bucket instances.
type QOSProfile struct {
	ID        int64
	BNGCode   string
	Name      string
	UpLink    string
	DownLink  string
	IsDefault bool
}

// Subscriber is the AAA user that owns service instances.
type Subscriber struct {
	UserID         string
	UserName       string
	Billing        string
	GroupID        string
	Concurrency    int
	SessionTimeout string
	Status         string
}

// Catalog resolves bucket definitions and their QoS profiles for one page of work.
type Catalog struct {
	Buckets     map[string]*Bucket
	QOSProfiles map[int64]*QOSProfile
}

// Resolve looks up the bucket and its QoS profile, reporting which reference is missing.
func (c Catalog) Resolve(bucketID string) (*Bucket, *QOSProfile, error) {
	b, ok := c.Buckets[bucketID]
	if !ok || b == nil {
		return nil, nil, &ReferenceError{Err: ErrBucketNotFound, ID: bucketID}
	}
	q, ok := c.QOSProfiles[b.QOSID]
	if !ok || q == nil {
		return nil, nil, &ReferenceError{Err: ErrQOSProfileNotFound, ID: strconv.FormatInt(b.QOSID, 10)}
	}
	return b, q, nil
}
