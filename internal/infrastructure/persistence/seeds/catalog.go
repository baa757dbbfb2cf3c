// Package seeds loads reference data and test subscribers from YAML files.
package seeds

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/axonect/quotacycle/internal/shared/biztime"
)

// Catalog is the root of a seed file.
type Catalog struct {
	QOSProfiles      []QOSProfileSeed      `yaml:"qos_profiles"`
	Buckets          []BucketSeed          `yaml:"buckets"`
	Plans            []PlanSeed            `yaml:"plans"`
	Subscribers      []SubscriberSeed      `yaml:"subscribers"`
	ServiceInstances []ServiceInstanceSeed `yaml:"service_instances"`
	ExpiryTemplates  []ExpiryTemplateSeed  `yaml:"expiry_templates"`
}

type QOSProfileSeed struct {
	ID        int64  `yaml:"id"`
	BNGCode   string `yaml:"bng_code"`
	Name      string `yaml:"name"`
	UpLink    string `yaml:"uplink"`
	DownLink  string `yaml:"downlink"`
	IsDefault bool   `yaml:"is_default"`
}

type BucketSeed struct {
	BucketID   string `yaml:"bucket_id"`
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	QOSID      int64  `yaml:"qos_id"`
	Priority   int64  `yaml:"priority"`
	TimeWindow string `yaml:"time_window"`
}

// PlanSeed carries its bucket templates inline.
type PlanSeed struct {
	PlanID          string         `yaml:"plan_id"`
	Name            string         `yaml:"name"`
	Type            string         `yaml:"type"`
	Recurring       bool           `yaml:"recurring"`
	RecurringPeriod string         `yaml:"recurring_period"`
	Status          string         `yaml:"status"`
	Templates       []TemplateSeed `yaml:"templates"`
}

type TemplateSeed struct {
	ID                     int64  `yaml:"id"`
	BucketID               string `yaml:"bucket_id"`
	InitialQuota           int64  `yaml:"initial_quota"`
	CarryForward           bool   `yaml:"carry_forward"`
	MaxCarryForward        int64  `yaml:"max_carry_forward"`
	TotalCarryForward      int64  `yaml:"total_carry_forward"`
	CarryForwardValidity   int    `yaml:"carry_forward_validity"`
	ConsumptionLimit       int64  `yaml:"consumption_limit"`
	ConsumptionLimitWindow string `yaml:"consumption_limit_window"`
}

type SubscriberSeed struct {
	UserID         string `yaml:"user_id"`
	UserName       string `yaml:"user_name"`
	GroupID        string `yaml:"group_id"`
	Billing        string `yaml:"billing"`
	Concurrency    int    `yaml:"concurrency"`
	SessionTimeout string `yaml:"session_timeout"`
	Status         string `yaml:"status"`
}

type ServiceInstanceSeed struct {
	ID             int64  `yaml:"id"`
	PlanID         string `yaml:"plan_id"`
	Username       string `yaml:"username"`
	Recurring      bool   `yaml:"recurring"`
	CycleStart     *Date  `yaml:"cycle_start"`
	CycleEnd       *Date  `yaml:"cycle_end"`
	NextCycleStart *Date  `yaml:"next_cycle_start"`
	ServiceStart   *Date  `yaml:"service_start"`
	Expiry         Date   `yaml:"expiry"`
	Status         string `yaml:"status"`
	IsGroup        bool   `yaml:"is_group"`
}

type ExpiryTemplateSeed struct {
	ID              int64  `yaml:"id"`
	SuperTemplateID int64  `yaml:"super_template_id"`
	MessageType     string `yaml:"message_type"`
	Content         string `yaml:"content"`
	DaysToExpire    *int   `yaml:"days_to_expire"`
	QuotaPercentage *int   `yaml:"quota_percentage"`
}

// Date accepts either a calendar date, read as business-timezone midnight, or an RFC 3339
// timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: date must be a scalar", value.Line)
	}
	if t, err := biztime.ParseDate(value.Value); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, value.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid date %q", value.Line, value.Value)
	}
	d.Time = t
	return nil
}

// ptr returns nil for an absent date.
func (d *Date) ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time.UTC()
	return &t
}

// LoadFile reads and decodes a seed file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a seed document; unknown keys are rejected.
func Parse(data []byte) (*Catalog, error) {
	var catalog Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&catalog); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &catalog, nil
}
