package codec

import (
	"fmt"
	"math"
	"strconv"
)

// BumpVersion increments a decimal version string by 0.1, formatted back
// with the shortest representation: "1.0" becomes "1.1", "1.9" becomes "2".
// The sum is rounded to one decimal so repeated bumps never accumulate
// float noise.
func BumpVersion(version string) (string, error) {
	parsed, err := strconv.ParseFloat(version, 64)
	if err != nil {
		return "", fmt.Errorf("version %q is not a decimal string: %w", version, err)
	}

	bumped := math.Round((parsed+0.1)*10) / 10

	return strconv.FormatFloat(bumped, 'f', -1, 64), nil
}
