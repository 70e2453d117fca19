package mandel

import (
	"fmt"
	"slices"
	"strings"
)

// regionViewport converts a rectangular region to the square viewport
// centered on it, wide enough to cover it.
func regionViewport(xmin, xmax, ymin, ymax float64) Viewport {
	return Viewport{
		Center:  complex((xmin+xmax)/2, (ymin+ymax)/2),
		Padding: max(xmax-xmin, ymax-ymin) / 2,
	}
}

// Classic landmarks in the Mandelbrot set.
var (
	// Seahorse Valley – dense filaments and repeating "seahorse" curls
	SeahorseValley = regionViewport(-0.8, -0.7, 0.05, 0.15)

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = regionViewport(-1.85, -1.75, -0.10, -0.02)

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = regionViewport(-0.7435, -0.7420, 0.1310, 0.1325)

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = regionViewport(-0.7480, -0.7450, 0.0950, 0.0980)

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = regionViewport(-0.7400, -0.7350, 0.1800, 0.1850)

	// Minibrot in a Mini-Spiral – self-similar copy inside a spiral arm
	MinibrotInMiniSpiral = regionViewport(-1.7390, -1.7375, -0.0235, -0.0220)

	// ZoomTarget is where the default zoom animation dives.
	ZoomTarget = Viewport{Center: complex(-0.7523932387219849, -0.0386979842015857), Padding: 2}

	// FilamentTarget is the deep filament rendered by the still-image tool.
	FilamentTarget = regionViewport(-0.765987207792208, -0.7659472077922079, -0.10093071428571464, -0.10089071428571462)
)

var landmarks = map[string]Viewport{
	"seahorse":      SeahorseValley,
	"elephant":      ElephantValley,
	"spiral":        SpiralMinibrot,
	"triple-spiral": TripleSpiral,
	"dragon":        ValleyOfTheDragon,
	"mini-spiral":   MinibrotInMiniSpiral,
	"zoom":          ZoomTarget,
	"filament":      FilamentTarget,
}

// LandmarkNames returns the names accepted by Landmark, sorted.
func LandmarkNames() []string {
	names := make([]string, 0, len(landmarks))
	for name := range landmarks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Landmark returns the viewport registered under name.
func Landmark(name string) (Viewport, error) {
	v, ok := landmarks[strings.ToLower(name)]
	if !ok {
		return Viewport{}, fmt.Errorf("%w: unknown region %q (known: %s)",
			ErrInvalidConfig, name, strings.Join(LandmarkNames(), ", "))
	}
	return v, nil
}
