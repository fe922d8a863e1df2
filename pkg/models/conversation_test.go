package models

import (
	"strings"
	"testing"
)

func TestTitleFromMessage(t *testing.T) {
	short := "show me vacancies"
	if got := TitleFromMessage(short); got != short {
		t.Errorf("short message should be its own title, got %q", got)
	}

	long := strings.Repeat("a", 80)
	got := TitleFromMessage(long)
	if got != strings.Repeat("a", 50)+"..." {
		t.Errorf("long message should truncate to 50 chars with ellipsis, got %q", got)
	}
}

func TestOccupancyFor(t *testing.T) {
	tests := []struct {
		occupants, capacity int
		want                OccupancyStatus
	}{
		{0, 3, OccupancyVacant},
		{1, 3, OccupancyPartiallyOccupied},
		{3, 3, OccupancyFullyOccupied},
		{4, 3, OccupancyFullyOccupied},
	}
	for _, tt := range tests {
		if got := OccupancyFor(tt.occupants, tt.capacity); got != tt.want {
			t.Errorf("OccupancyFor(%d, %d) = %q, want %q", tt.occupants, tt.capacity, got, tt.want)
		}
	}
}
