package redisbus

import "testing"

func TestParseStreamOffset(t *testing.T) {
	cases := []struct {
		id   string
		want int64
	}{
		{"1234567890123-0", 1234567890123},
		{"1234567890123-5", 1234567890123},
		{"42", 42},
	}

	for _, c := range cases {
		got, err := ParseStreamOffset(c.id)
		if err != nil {
			t.Fatalf("ParseStreamOffset(%q) returned error: %v", c.id, err)
		}
		if got != c.want {
			t.Errorf("ParseStreamOffset(%q) = %d, want %d", c.id, got, c.want)
		}
	}
}
