package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_Scan(t *testing.T) {
	may1 := Date{Year: 2024, Month: time.May, Day: 1}

	tests := []struct {
		name    string
		src     interface{}
		want    Date
		wantErr bool
	}{
		{name: "postgres date", src: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), want: may1},
		{name: "text", src: "2024-05-01", want: may1},
		{name: "text with time", src: "2024-05-01T00:00:00Z", want: may1},
		{name: "bytes", src: []byte("2024-05-01"), want: may1},
		{name: "null", src: nil, want: Date{}},
		{name: "garbage", src: "May 1", wantErr: true},
		{name: "unsupported type", src: int64(20240501), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Date{Year: 1999, Month: time.January, Day: 1}
			err := d.Scan(tt.src)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestDate_AddDaysCrossesMonth(t *testing.T) {
	d := Date{Year: 2024, Month: time.April, Day: 30}
	assert.Equal(t, Date{Year: 2024, Month: time.May, Day: 1}, d.AddDays(1))
	assert.Equal(t, "2024-04-29", d.AddDays(-1).String())
}

func TestDate_JSON(t *testing.T) {
	b, err := json.Marshal(Date{Year: 2024, Month: time.May, Day: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-05-01"`, string(b))

	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"05/01/2024"`), &d))
}
