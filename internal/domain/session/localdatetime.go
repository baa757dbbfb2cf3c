package session

import (
	"bytes"
	"fmt"
	"time"

	"github.com/axonect/quotacycle/internal/shared/biztime"
)

const localDateTimeLayout = "2006-01-02T15:04:05.999999999"

// LocalDateTime is a zone-less timestamp on the business calendar, encoded as
// "2006-01-02T15:04:05" the way the AAA session documents store it.
type LocalDateTime struct {
	time.Time
}

func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{Time: biztime.ToLocal(t)}
}

func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	if l.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + biztime.ToLocal(l.Time).Format(localDateTimeLayout) + `"`), nil
}

func (l *LocalDateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		l.Time = time.Time{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid local date time %s", data)
	}
	t, err := time.ParseInLocation(localDateTimeLayout, string(data[1:len(data)-1]), biztime.Location())
	if err != nil {
		return fmt.Errorf("invalid local date time %s: %w", data, err)
	}
	l.Time = t
	return nil
}
