package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonect/quotacycle/internal/domain/provisioning"
	"github.com/axonect/quotacycle/internal/shared/biztime"
)

func local(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, biztime.Location())
}

func TestNewBalance(t *testing.T) {
	start := local(2024, 3, 1)
	svc, err := provisioning.ReconstructServiceInstance(
		9, "P-1", "Home", "PREPAID", "alice", true,
		&start, nil, nil, &start, local(2024, 12, 31),
		"ACTIVE", true, "", time.Time{}, time.Time{},
	)
	require.NoError(t, err)
	b := provisioning.ReconstructBucketInstance(77, "B-DATA", 9, "DATA", "QOS", 3, 1000, 800, 200,
		true, 0, 0, 0, "00-24", 50, "24", local(2024, 12, 31), time.Time{})

	bal := NewBalance(svc, b)

	assert.Equal(t, "77", bal.BucketID)
	assert.Equal(t, "9", bal.ServiceID)
	assert.Equal(t, int64(1000), bal.InitialBalance)
	assert.Equal(t, int64(800), bal.Quota)
	assert.Equal(t, int64(24), bal.ConsumptionLimitWindow)
	assert.Equal(t, "alice", bal.BucketUsername)
	assert.True(t, bal.Group)
	assert.False(t, bal.Unlimited)
	assert.Equal(t, int64(200), bal.Usage)
	assert.True(t, bal.ServiceStartDate.Equal(start))
}

func TestPruneExpired(t *testing.T) {
	now := local(2024, 3, 10).Add(12 * time.Hour)
	d := &UserSessionData{Balance: []Balance{
		{BucketID: "old", BucketExpiryDate: NewLocalDateTime(local(2024, 3, 8))},
		{BucketID: "edge", BucketExpiryDate: NewLocalDateTime(now.Add(-24 * time.Hour))},
		{BucketID: "recent", BucketExpiryDate: NewLocalDateTime(local(2024, 3, 10))},
		{BucketID: "future", BucketExpiryDate: NewLocalDateTime(local(2024, 4, 1))},
	}}

	removed := d.PruneExpired(now)

	assert.Equal(t, 2, removed)
	require.Len(t, d.Balance, 2)
	assert.Equal(t, "recent", d.Balance[0].BucketID)
	assert.Equal(t, "future", d.Balance[1].BucketID)
}

func TestGroupEntry(t *testing.T) {
	d := &UserSessionData{GroupID: "G7", Concurrency: 2, UserStatus: "ACTIVE", SessionTimeOut: "3600"}
	assert.True(t, d.HasGroup())
	assert.Equal(t, "G7,2,ACTIVE,3600", d.GroupEntry())

	assert.False(t, (&UserSessionData{GroupID: "1"}).HasGroup())
	assert.False(t, (&UserSessionData{}).HasGroup())
}

func TestUserSessionData_JSONRoundTripKeepsLocalDates(t *testing.T) {
	raw := `{"userName":"alice","groupId":"1","concurrency":1,"superTemplateId":3,
		"balance":[{"bucketId":"5","quota":10,"bucketExpiryDate":"2024-03-31T23:59:59","serviceExpiry":null}],
		"sessions":[{"sessionId":"s1","status":"ACTIVE"}],"qosParam":{"qosProfileId":"Q1","priority":"HIGH"}}`

	var d UserSessionData
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	require.Len(t, d.Balance, 1)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 0, biztime.Location()), d.Balance[0].BucketExpiryDate.Time)
	assert.True(t, d.Balance[0].ServiceExpiry.IsZero())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"bucketExpiryDate":"2024-03-31T23:59:59"`)
	assert.Contains(t, string(out), `"qosProfileId":"Q1"`)
}
