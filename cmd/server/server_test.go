package main

import (
	"testing"

	"github.com/J-Feltens/Mandelbrot/remote"
)

func TestDispatchWorkers(t *testing.T) {
	tests := []struct {
		tiles, frames int
		want          int
	}{
		{4, 1, 16},
		{4, 3, 48},
		{4, 0, 16},
		{0, 1, 1},
		{32, 1, remote.MaxWorkers},
		{10, 100, remote.MaxWorkers},
		{1 << 20, 1 << 20, remote.MaxWorkers},
	}
	for _, tt := range tests {
		if got := dispatchWorkers(tt.tiles, tt.frames); got != tt.want {
			t.Errorf("dispatchWorkers(%d, %d) = %d, want %d", tt.tiles, tt.frames, got, tt.want)
		}
	}
}
