// SPDX-License-Identifier: MIT
package bitint

import "testing"

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		input, want int
	}{
		{-1, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 4}, {5, 8},
		{1000, 1024}, {1024, 1024}, {1025, 2048}, {44100, 65536},
	}
	for _, tt := range tests {
		if got := NextPowerOfTwo(tt.input); got != tt.want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestPrevPowerOfTwo(t *testing.T) {
	tests := []struct {
		input, want int
	}{
		{-4, 0}, {0, 0}, {1, 1}, {3, 2}, {1000, 512}, {2048, 2048}, {4095, 2048},
	}
	for _, tt := range tests {
		if got := PrevPowerOfTwo(tt.input); got != tt.want {
			t.Errorf("PrevPowerOfTwo(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestNearestPowerOfTwo(t *testing.T) {
	tests := []struct {
		input, want int
	}{
		{0, 1}, {1, 1}, {3, 4}, {5, 4}, {6, 8}, {1000, 1024}, {700, 512}, {768, 1024},
	}
	for _, tt := range tests {
		if got := NearestPowerOfTwo(tt.input); got != tt.want {
			t.Errorf("NearestPowerOfTwo(%d) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		input int
		want  bool
	}{
		{-8, false}, {0, false}, {1, true}, {2, true}, {7, false}, {8, true},
		{1000, false}, {2048, true}, {1 << 30, true},
	}
	for _, tt := range tests {
		if got := IsPowerOfTwo(tt.input); got != tt.want {
			t.Errorf("IsPowerOfTwo(%d) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func BenchmarkNextPowerOfTwo(b *testing.B) {
	for b.Loop() {
		_ = NextPowerOfTwo(44100)
	}
}

func BenchmarkIsPowerOfTwo(b *testing.B) {
	for b.Loop() {
		_ = IsPowerOfTwo(2048)
	}
}
