package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThousands(t *testing.T) {
	tests := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1.000",
		8333:     "8.333",
		4250000:  "4.250.000",
		-12500:   "-12.500",
		10000000: "10.000.000",
	}
	for in, want := range tests {
		assert.Equal(t, want, Thousands(in), "Thousands(%d)", in)
	}
}
