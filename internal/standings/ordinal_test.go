package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatRank(t *testing.T) {
	tests := map[int]string{
		1:   "1st  🥇",
		2:   "2nd  🥈",
		3:   "3rd  🥉",
		4:   "4th",
		10:  "10th",
		11:  "11th",
		12:  "12th",
		13:  "13th",
		21:  "21st",
		22:  "22nd",
		23:  "23rd",
		31:  "31st",
		100: "100th",
		111: "111th",
		112: "112th",
		113: "113th",
		121: "121st",
	}

	for n, want := range tests {
		assert.Equal(t, want, FormatRank(n), "rank %d", n)
	}
}
