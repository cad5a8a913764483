package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// referenceByteLen yields 12 hex characters after encoding.
const referenceByteLen = 6

// TransferReferenceGenerator implements ports.ReferenceGenerator.
// References look like TXN_9F2A41C08B7D: a fixed prefix plus 12 uppercase
// hex characters drawn from crypto/rand, so collisions are negligible and
// values are not guessable from prior ones.
type TransferReferenceGenerator struct{}

// NewReferenceGenerator creates a TransferReferenceGenerator.
func NewReferenceGenerator() *TransferReferenceGenerator {
	return &TransferReferenceGenerator{}
}

// New issues a fresh transfer reference.
func (g *TransferReferenceGenerator) New() string {
	var b [referenceByteLen]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failure means the platform entropy source is broken;
		// refusing to issue references is the only safe behavior.
		panic(fmt.Sprintf("reference generator: %v", err))
	}
	return "TXN_" + strings.ToUpper(hex.EncodeToString(b[:]))
}
