package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhonePattern(t *testing.T) {
	valid := []string{
		"0708091011",
		"+2250708091011",
		"225 07 08 09 10 11",
		"+225-07-08-09-10-11",
	}
	for _, p := range valid {
		assert.True(t, phoneRe.MatchString(p), p)
	}

	invalid := []string{
		"",
		"abc",
		"07",
		"07080910_11",
		"++2250708091011",
	}
	for _, p := range invalid {
		assert.False(t, phoneRe.MatchString(p), p)
	}
}
