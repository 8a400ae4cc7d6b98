package analysis

import "math"

// AtmoBounds are the class boundaries of the ATMO air quality index:
// good [1,5), average [5,7), bad [7,11).
var AtmoBounds = [4]float64{1, 5, 7, 11}

// AtmoIndexClasses counts daily index values per ATMO class. NaN and
// out of range values are not counted.
func AtmoIndexClasses(indices []float64) [3]int {
	var counts [3]int
	for _, v := range indices {
		if math.IsNaN(v) {
			continue
		}
		for c := 0; c < 3; c++ {
			if v >= AtmoBounds[c] && v < AtmoBounds[c+1] {
				counts[c]++
				break
			}
		}
	}
	return counts
}
