// Package session models the per-subscriber documents the AAA layer reads from redis.
package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
)

// UserSessionData is the whole document stored under user:<username>.
type UserSessionData struct {
	SessionTimeOut  string    `json:"sessionTimeOut"`
	UserStatus      string    `json:"userStatus"`
	UserName        string    `json:"userName"`
	GroupID         string    `json:"groupId"`
	Concurrency     int64     `json:"concurrency"`
	SuperTemplateID int64     `json:"superTemplateId"`
	Balance         []Balance `json:"balance"`
	Sessions        []Session `json:"sessions"`
	QosParam        *QosParam `json:"qosParam,omitempty"`
}

// Balance is the cached projection of one bucket instance.
type Balance struct {
	InitialBalance         int64         `json:"initialBalance"`
	Quota                  int64         `json:"quota"`
	ServiceExpiry          LocalDateTime `json:"serviceExpiry"`
	BucketExpiryDate       LocalDateTime `json:"bucketExpiryDate"`
	BucketID               string        `json:"bucketId"`
	ServiceID              string        `json:"serviceId"`
	Priority               int64         `json:"priority"`
	ServiceStartDate       LocalDateTime `json:"serviceStartDate"`
	ServiceStatus          string        `json:"serviceStatus"`
	TimeWindow             string        `json:"timeWindow"`
	ConsumptionLimit       int64         `json:"consumptionLimit"`
	ConsumptionLimitWindow int64         `json:"consumptionLimitWindow"`
	BucketUsername         string        `json:"bucketUsername"`
	Unlimited              bool          `json:"unlimited"`
	Group                  bool          `json:"group"`
	Usage                  int64         `json:"usage"`
}

type Session struct {
	SessionID        string `json:"sessionId"`
	SessionStartTime string `json:"sessionStartTime"`
	SessionEndTime   string `json:"sessionEndTime"`
	Status           string `json:"status"`
}

type QosParam struct {
	QosProfileID     string `json:"qosProfileId"`
	BandwidthLimit   *int   `json:"bandwidthLimit,omitempty"`
	LatencyThreshold *int   `json:"latencyThreshold,omitempty"`
	Priority         string `json:"priority"`
}

// NewBalance projects a persisted bucket instance of svc. The bucket id in the projection
// is the instance id, not the catalog bucket id. A consumption limit window that is not a
// number is projected as 0.
func NewBalance(svc *provisioning.ServiceInstance, b *provisioning.BucketInstance) Balance {
	window, _ := strconv.ParseInt(strings.TrimSpace(b.ConsumptionLimitWindow()), 10, 64)

	bal := Balance{
		InitialBalance:         b.InitialBalance(),
		Quota:                  b.CurrentBalance(),
		ServiceExpiry:          NewLocalDateTime(svc.ExpiryDate()),
		BucketExpiryDate:       NewLocalDateTime(b.Expiration()),
		BucketID:               strconv.FormatInt(b.ID(), 10),
		ServiceID:              strconv.FormatInt(b.ServiceID(), 10),
		Priority:               b.Priority(),
		ServiceStatus:          svc.Status(),
		TimeWindow:             b.TimeWindow(),
		ConsumptionLimit:       b.ConsumptionLimit(),
		ConsumptionLimitWindow: window,
		BucketUsername:         svc.Username(),
		Unlimited:              false,
		Group:                  svc.IsGroup(),
		Usage:                  b.Usage(),
	}
	if start := svc.ServiceStartDate(); start != nil {
		bal.ServiceStartDate = NewLocalDateTime(*start)
	}
	return bal
}

// AppendBalances adds projections of the given buckets.
func (d *UserSessionData) AppendBalances(svc *provisioning.ServiceInstance, buckets []*provisioning.BucketInstance) {
	for _, b := range buckets {
		d.Balance = append(d.Balance, NewBalance(svc, b))
	}
}

// PruneExpired drops balances whose bucket expired more than a day before now and
// returns how many were removed.
func (d *UserSessionData) PruneExpired(now time.Time) int {
	cutoff := now.Add(-24 * time.Hour)
	kept := d.Balance[:0]
	removed := 0
	for _, b := range d.Balance {
		if b.BucketExpiryDate.After(cutoff) {
			kept = append(kept, b)
			continue
		}
		removed++
	}
	d.Balance = kept
	return removed
}

// HasGroup reports whether the subscriber belongs to a real group; "1" is the default group.
func (d *UserSessionData) HasGroup() bool {
	return d.GroupID != "" && !strings.EqualFold(d.GroupID, "1")
}

// GroupEntry renders the group:<username> value "groupId,concurrency,userStatus,sessionTimeOut".
func (d *UserSessionData) GroupEntry() string {
	return fmt.Sprintf("%s,%d,%s,%s", d.GroupID, d.Concurrency, d.UserStatus, d.SessionTimeOut)
}
