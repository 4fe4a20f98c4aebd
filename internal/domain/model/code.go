package model

import (
	"crypto/rand"
	"io"
)

// CodePrefix is printed on every voucher ticket.
const CodePrefix = "HM-"

// codeAlphabet avoids ambiguous characters like O/0, I/1, l. Its length of 32
// divides 256, so the modulo below introduces no bias.
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

const codeLength = 4

// GenerateCode creates a random, human-readable voucher code.
// Format: HM-XXXX. Uniqueness against the live collection is the caller's job.
func GenerateCode() (string, error) {
	buffer := make([]byte, codeLength)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	for i := 0; i < codeLength; i++ {
		buffer[i] = codeAlphabet[int(buffer[i])%len(codeAlphabet)]
	}
	return CodePrefix + string(buffer), nil
}
