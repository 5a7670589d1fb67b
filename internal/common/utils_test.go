package common

import (
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"[수도권제1순환선] 판교", "수도권제1순환선_판교"},
		{"[경부선] 양재", "경부선_양재"},
		{"a/b\\c:d*e?f\"g<h>i|j", "abcdefghij"},
		{"  spaced   out  ", "spaced_out"},
		{"..", "camera"},
		{"[]", "camera"},
		{"tab\tname\n", "tab_name"},
	}

	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if strings.ContainsAny(SanitizeName(tt.in), UnsafeNameChars) {
			t.Errorf("SanitizeName(%q) kept an unsafe character", tt.in)
		}
	}
}
