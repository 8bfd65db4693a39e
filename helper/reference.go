package helper

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
)

// ReferenceAlphabet drops 0/O/1/I so customers can read the code
// over the phone without ambiguity.
const ReferenceAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ReferenceChecker answers whether a payment reference is already taken.
type ReferenceChecker interface {
	ReferenceExists(reference string) (bool, error)
}

func randomReferenceBlock(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(ReferenceAlphabet[rand.Intn(len(ReferenceAlphabet))])
	}
	return b.String()
}

// GenerateOrderReference draws SC-XXXX-XXXX codes until one is free.
// The store's unique index on payment_reference is the second safeguard:
// two concurrent creations can both pass this check, and the loser of
// the insert race retries with a fresh code.
func GenerateOrderReference(store ReferenceChecker) (string, error) {
	for {
		reference := fmt.Sprintf("SC-%s-%s", randomReferenceBlock(4), randomReferenceBlock(4))

		exists, err := store.ReferenceExists(reference)
		if err != nil {
			return "", err
		}
		if !exists {
			return reference, nil
		}
		log.Printf("payment reference collision on %s, redrawing", reference)
	}
}
