package normalize

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "The park is clean", "The park is clean"},
		{"strips urls", "see https://example.com/report for details", "see for details"},
		{"strips emails", "contact me at jane.doe@example.com please", "contact me at please"},
		{"strips ten digit phones", "call 9876543210 now", "call now"},
		{"strips hyphenated phones", "call 555-123-4567 now", "call now"},
		{"expands wont", "it won't drain", "it will not drain"},
		{"expands cant", "we can't park here", "we cannot park here"},
		{"expands generic negation", "the light isn't working", "the light is not working"},
		{"collapses whitespace", "  too \t many\n spaces  ", "too many spaces"},
		{"empty input", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"contact info only", "jane@example.com 9876543210", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	in := "Streetlight broken, won't turn on. Contact 555-123-4567 or see http://city.example/report"
	first := Normalize(in)
	for i := 0; i < 5; i++ {
		if got := Normalize(in); got != first {
			t.Fatalf("run %d produced %q, want %q", i, got, first)
		}
	}
}
