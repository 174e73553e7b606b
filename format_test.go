/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "testing"

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{999, "999 B"},
		{1000, "1.0 kB"},
		{1536, "1.5 kB"},
		{2_500_000, "2.5 MB"},
		{3_000_000_000, "3.0 GB"},
	}

	for _, tt := range tests {
		if got := humanReadableSize(tt.in); got != tt.want {
			t.Errorf("humanReadableSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
