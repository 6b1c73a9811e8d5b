package paintmatch

// pixelDifference returns the scaled difference of one pixel in [0, 1].
//
// pc and tc are 4-byte RGBA samples. The color term is the mean absolute
// channel difference, the height term is the absolute height difference.
// Both are averaged, multiplied by difficulty and clamped to [0, 1].
// Must match difference.wgsl.
func pixelDifference(pc, tc []uint8, ph, th, difficulty float32) float32 {
	var sum int
	for c := 0; c < 4; c++ {
		d := int(pc[c]) - int(tc[c])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	colorDiff := float32(sum) / (4 * 255)

	heightDiff := ph - th
	if heightDiff < 0 {
		heightDiff = -heightDiff
	}
	if heightDiff > 1 {
		heightDiff = 1
	}

	d := difficulty * (colorDiff + heightDiff) * 0.5
	switch {
	case d > 1:
		return 1
	case d < 0:
		return 0
	default:
		return d
	}
}

// validateParams checks that every binding is present and sized to the
// resolution.
func validateParams(p KernelParams) error {
	if p.Resolution <= 0 {
		return ErrInvalidConfiguration
	}
	if p.PlayerColor == nil || p.PlayerHeight == nil || p.TargetColor == nil || p.TargetHeight == nil {
		return ErrInvalidConfiguration
	}
	r := p.Resolution
	if p.PlayerColor.Size() != r || p.TargetColor.Size() != r ||
		p.PlayerHeight.Size() != r || p.TargetHeight.Size() != r {
		return ErrInvalidConfiguration
	}
	return nil
}
