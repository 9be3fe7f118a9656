package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const secretKeyLength = 32

// GenerateRandomSecretKey возвращает случайный ключ подписи JWT.
// Используется, если ключ не задан в конфигурации.
func GenerateRandomSecretKey() (string, error) {
	b := make([]byte, secretKeyLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random secret key: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// SecretKeyOrRandom возвращает key, а если он пуст - новый случайный ключ.
func SecretKeyOrRandom(key string) (string, error) {
	if key != "" {
		return key, nil
	}
	return GenerateRandomSecretKey()
}
