package game

// pixelLevels is the fixed descending sequence of blur intensities a pixel
// game steps through. Larger is blurrier; the last value is the sharpest
// rendering ever shown before the game ends.
var pixelLevels = [...]float64{0.125, 0.085, 0.05, 0.03, 0.02, 0.015, 0.01}

const minPixelLevelValue = 0.01

func firstPixelLevel() float64 {
	return pixelLevels[0]
}

// nextPixelLevel advances one step toward sharp. At the floor it stays put.
func nextPixelLevel(cur float64) float64 {
	for i, lvl := range pixelLevels {
		if lvl == cur && i+1 < len(pixelLevels) {
			return pixelLevels[i+1]
		}
	}
	return cur
}
