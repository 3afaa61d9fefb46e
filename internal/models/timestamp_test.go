package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampAcceptsUpstreamLayouts(t *testing.T) {
	cases := map[string]time.Time{
		`"2024-03-09"`:                time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		`"2024-03-09T10:15:00Z"`:      time.Date(2024, 3, 9, 10, 15, 0, 0, time.UTC),
		`"2024-03-09T10:15:00.123Z"`:  time.Date(2024, 3, 9, 10, 15, 0, 123000000, time.UTC),
		`"2024-03-09 10:15:00"`:       time.Date(2024, 3, 9, 10, 15, 0, 0, time.UTC),
		`"2024-03-09T10:15:00+02:00"`: time.Date(2024, 3, 9, 8, 15, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(raw), &ts), raw)
		assert.True(t, want.Equal(ts.Time), raw)
	}
}

func TestTimestampNullAndEmptyAreZero(t *testing.T) {
	var report Report
	require.NoError(t, json.Unmarshal([]byte(`{"date":null,"created_at":""}`), &report))
	assert.True(t, report.Date.IsZero())
	assert.True(t, report.CreatedAt.IsZero())

	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"09/03/2024"`), &ts))
}

func TestTimestampMarshalKeepsDateOnlyValues(t *testing.T) {
	out, err := json.Marshal(struct {
		Date Timestamp `json:"date"`
		At   Timestamp `json:"at"`
		None Timestamp `json:"none"`
	}{
		Date: NewTimestamp(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)),
		At:   NewTimestamp(time.Date(2024, 3, 9, 10, 15, 0, 0, time.UTC)),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-09","at":"2024-03-09T10:15:00Z","none":null}`, string(out))
}

func TestScheduledClassStartsAt(t *testing.T) {
	class := ScheduledClass{Date: NewTimestamp(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)), Time: "14:30"}
	assert.Equal(t, time.Date(2024, 3, 9, 14, 30, 0, 0, time.UTC), class.StartsAt(time.UTC))

	class.Time = "late"
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), class.StartsAt(nil))
}

func TestScheduledClassStartsAtKeepsInstant(t *testing.T) {
	johannesburg := time.FixedZone("SAST", 2*60*60)
	class := ScheduledClass{Date: NewTimestamp(time.Date(2026, 10, 15, 23, 30, 0, 0, time.UTC)), Time: "08:00"}

	start := class.StartsAt(johannesburg)
	assert.True(t, start.Equal(time.Date(2026, 10, 16, 1, 30, 0, 0, johannesburg)))
	assert.Equal(t, 16, start.Day())
}

func TestParseRoleNormalisesSpellings(t *testing.T) {
	assert.Equal(t, RoleProgramLeader, ParseRole("Program Leader"))
	assert.Equal(t, RoleProgramLeader, ParseRole("program_leader"))
	assert.Equal(t, RolePRL, ParseRole("prl"))
	assert.Equal(t, RoleLecturer, ParseRole("LECTURER"))
	assert.False(t, ParseRole("janitor").Valid())
	assert.True(t, RoleFMG.Reviewer())
	assert.False(t, RoleLecturer.Reviewer())
}
