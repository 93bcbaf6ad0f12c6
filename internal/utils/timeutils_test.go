package utils

import "testing"

func TestParseHour(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"22", 22, false},
		{"06", 6, false},
		{"0", 0, false},
		{"23", 23, false},
		{"22:15", 22, false},
		{" 9 ", 9, false},
		{"", 0, true},
		{"24", 0, true},
		{"-1", 0, true},
		{"noon", 0, true},
	}

	for _, tc := range tests {
		got, err := ParseHour(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseHour(%q) succeeded, want error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseHour(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseHour(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestIsLateNight(t *testing.T) {
	late := []int{22, 23, 0, 3, 6}
	for _, hour := range late {
		if !IsLateNight(hour) {
			t.Errorf("IsLateNight(%d) = false, want true", hour)
		}
	}
	day := []int{7, 12, 18, 21}
	for _, hour := range day {
		if IsLateNight(hour) {
			t.Errorf("IsLateNight(%d) = true, want false", hour)
		}
	}
}
