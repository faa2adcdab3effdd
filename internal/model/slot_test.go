package model

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Slot
		wantErr string
	}{
		{name: "canonical", input: "14:00", want: "14:00"},
		{name: "noon", input: "12:00 PM", want: "12:00"},
		{name: "one pm", input: "1:00 PM", want: "13:00"},
		{name: "lower case", input: "5:00 pm", want: "17:00"},
		{name: "no space", input: "2:00PM", want: "14:00"},
		{name: "surrounding space", input: " 10:00 ", want: "10:00"},
		{name: "midnight", input: "12:00 AM", wantErr: "not offered"},
		{name: "half hour", input: "10:30", wantErr: "not offered"},
		{name: "before opening", input: "9:00", wantErr: "not offered"},
		{name: "seconds", input: "14:00:00", wantErr: "malformed"},
		{name: "empty", input: "", wantErr: "malformed"},
		{name: "out of range", input: "24:00", wantErr: "malformed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSlot(tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlotLess(t *testing.T) {
	slots := []Slot{"13:00", "12:00", "10:00"}
	sort.SliceStable(slots, func(i, j int) bool { return SlotLess(slots[i], slots[j]) })
	assert.Equal(t, []Slot{"10:00", "12:00", "13:00"}, slots)

	// Legacy labels normalize first, so noon sorts before one o'clock.
	var parsed []Slot
	for _, label := range []string{"1:00 PM", "12:00 PM", "11:00 AM"} {
		s, err := ParseSlot(label)
		require.NoError(t, err)
		parsed = append(parsed, s)
	}
	sort.SliceStable(parsed, func(i, j int) bool { return SlotLess(parsed[i], parsed[j]) })
	assert.Equal(t, []Slot{"11:00", "12:00", "13:00"}, parsed)
}

func TestSlot_Minutes(t *testing.T) {
	assert.Equal(t, 600, Slot("10:00").Minutes())
	assert.Equal(t, 17*60, Slot("17:00").Minutes())
	assert.Equal(t, -1, Slot("5 pm").Minutes())
}

func TestDailyTemplateIsACopy(t *testing.T) {
	slots := DailyTemplate()
	require.Len(t, slots, 8)
	slots[0] = "09:00"
	assert.Equal(t, Slot("10:00"), DailyTemplate()[0])
}
