package provisioning

import (
	"fmt"
	"time"

	"github.com/axonect/quotacycle/internal/shared/biztime"
)

// ServiceInstance is a subscriber's enrollment in a plan and owns the cycle dates.
type ServiceInstance struct {
	id                 int64
	planID             string
	planName           string
	planType           string
	username           string
	recurringFlag      bool
	cycleStartDate     *time.Time
	cycleEndDate       *time.Time
	nextCycleStartDate *time.Time
	serviceStartDate   *time.Time
	expiryDate         time.Time
	status             string
	isGroup            bool
	requestID          string
	createdAt          time.Time
	updatedAt          time.Time
}

// ReconstructServiceInstance reconstructs a service instance from persistence
func ReconstructServiceInstance(
	id int64,
	planID, planName, planType, username string,
	recurringFlag bool,
	cycleStartDate, cycleEndDate, nextCycleStartDate, serviceStartDate *time.Time,
	expiryDate time.Time,
	status string,
	isGroup bool,
	requestID string,
	createdAt, updatedAt time.Time,
) (*ServiceInstance, error) {
	if id == 0 {
		return nil, fmt.Errorf("service instance ID cannot be zero")
	}
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}

	return &ServiceInstance{
		id:                 id,
		planID:             planID,
		planName:           planName,
		planType:           planType,
		username:           username,
		recurringFlag:      recurringFlag,
		cycleStartDate:     cycleStartDate,
		cycleEndDate:       cycleEndDate,
		nextCycleStartDate: nextCycleStartDate,
		serviceStartDate:   serviceStartDate,
		expiryDate:         expiryDate,
		status:             status,
		isGroup:            isGroup,
		requestID:          requestID,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}, nil
}

func (s *ServiceInstance) ID() int64                      { return s.id }
func (s *ServiceInstance) PlanID() string                 { return s.planID }
func (s *ServiceInstance) PlanName() string               { return s.planName }
func (s *ServiceInstance) PlanType() string               { return s.planType }
func (s *ServiceInstance) Username() string               { return s.username }
func (s *ServiceInstance) RecurringFlag() bool            { return s.recurringFlag }
func (s *ServiceInstance) CycleStartDate() *time.Time     { return s.cycleStartDate }
func (s *ServiceInstance) CycleEndDate() *time.Time       { return s.cycleEndDate }
func (s *ServiceInstance) NextCycleStartDate() *time.Time { return s.nextCycleStartDate }
func (s *ServiceInstance) ServiceStartDate() *time.Time   { return s.serviceStartDate }
func (s *ServiceInstance) ExpiryDate() time.Time          { return s.expiryDate }
func (s *ServiceInstance) Status() string                 { return s.status }
func (s *ServiceInstance) IsGroup() bool                  { return s.isGroup }
func (s *ServiceInstance) RequestID() string              { return s.requestID }
func (s *ServiceInstance) CreatedAt() time.Time           { return s.createdAt }
func (s *ServiceInstance) UpdatedAt() time.Time           { return s.updatedAt }

// AdvanceCycle moves the instance into the cycle that starts at its next cycle start date.
//
// The new cycle runs ValidityDays days; the following start is cleared when it would fall
// after the service expiry or the plan no longer recurs.
func (s *ServiceInstance) AdvanceCycle(plan *Plan, billing string) error {
	if s.nextCycleStartDate == nil {
		return ErrNoNextCycle
	}
	if plan == nil {
		return fmt.Errorf("plan is required to advance service %d", s.id)
	}

	start := *s.nextCycleStartDate
	days := ValidityDays(plan.RecurringPeriod, billing, start)
	if days < 1 {
		return fmt.Errorf("invalid validity of %d days for service %d", days, s.id)
	}
	end := biztime.AddDays(start, days-1)
	next := biztime.AddDays(end, 1)

	s.serviceStartDate = &start
	s.cycleStartDate = &start
	s.cycleEndDate = &end
	if next.After(s.expiryDate) || !plan.RecurringFlag {
		s.nextCycleStartDate = nil
	} else {
		s.nextCycleStartDate = &next
	}
	s.updatedAt = biztime.Now()
	return nil
}
