package security

import (
	"crypto/rand"
	"fmt"
)

var refCodeCharset = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

// RefCodeLength is the length of the reference code stamped on settled orders.
const RefCodeLength = 20

// GenerateRefCode produces a random lowercase-alphanumeric reference code.
func GenerateRefCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}

	result := make([]rune, length)
	for i := 0; i < length; i++ {
		idx, err := randInt(len(refCodeCharset))
		if err != nil {
			return "", err
		}
		result[i] = refCodeCharset[idx]
	}
	return string(result), nil
}

func randInt(max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("invalid max %d", max)
	}
	var buff = make([]byte, 1)
	if _, err := rand.Read(buff); err != nil {
		return 0, err
	}
	return int(buff[0]) % max, nil
}
