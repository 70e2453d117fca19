package mandel

// ComputeBlock evaluates EscapeTime for every sample of the window.
// The returned grid has the same Rect as samples.
func ComputeBlock(samples *SampleGrid, n int) *ResultGrid {
	res := NewResultGrid(samples.Rect)
	for y := samples.Rect.Min.Y; y < samples.Rect.Max.Y; y++ {
		for x := samples.Rect.Min.X; x < samples.Rect.Max.X; x++ {
			res.Set(y, x, EscapeTime(samples.At(y, x), n))
		}
	}
	return res
}
