package domain

import (
	"crypto/rand"
	"encoding/hex"
)

// NewDocumentID returns a 24-character hex identifier for a stored document.
func NewDocumentID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// IsDocumentID reports whether s has the shape of a store-generated
// document identifier.
func IsDocumentID(s string) bool {
	if len(s) != 24 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
