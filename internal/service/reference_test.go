package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var referencePattern = regexp.MustCompile(`^TXN_[0-9A-F]{12}$`)

func TestReferenceGenerator_Format(t *testing.T) {
	g := NewReferenceGenerator()
	for i := 0; i < 100; i++ {
		ref := g.New()
		assert.Regexp(t, referencePattern, ref)
	}
}

func TestReferenceGenerator_Uniqueness(t *testing.T) {
	g := NewReferenceGenerator()
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		ref := g.New()
		_, dup := seen[ref]
		assert.False(t, dup, "duplicate reference %s after %d draws", ref, i)
		seen[ref] = struct{}{}
	}
}
