package provisioning

import (
	"errors"
	"fmt"
)

var (
	ErrNoNextCycle          = errors.New("service instance has no next cycle start date")
	ErrNoExistingBuckets    = errors.New("no bucket instances exist for service")
	ErrNoTemplates          = errors.New("plan has no bucket templates")
	ErrBucketNotFound       = errors.New("bucket not found")
	ErrQOSProfileNotFound   = errors.New("qos profile not found")
	ErrInvalidFailureStatus = errors.New("invalid processing failure status")
)

// ReferenceError names the catalog entry a template pointed at but that did not resolve.
type ReferenceError struct {
	Err error
	ID  string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.ID)
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}
