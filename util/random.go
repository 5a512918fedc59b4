package util

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/hex"
)

func GenerateRandomBytes(nBytes int) ([]byte, error) {
	b := make([]byte, nBytes)
	_, err := rand.Read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func GetSha1OfString(s string) (string, error) {
	hasher := sha1.New()
	if _, err := hasher.Write([]byte(s)); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
