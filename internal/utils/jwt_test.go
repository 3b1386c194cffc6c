package utils_test

import (
	"errors"
	"testing"

	"github.com/USA-RedDragon/ota-server/internal/utils"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateVerify(t *testing.T) {
	t.Parallel()

	secret := "changeme"
	uid := uint(1)
	token, err := utils.GenerateJWT(secret, uid)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	gotUID, err := utils.VerifyJWT(secret, token)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if gotUID != uid {
		t.Errorf("expected %d, got %d", uid, gotUID)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := utils.GenerateJWT("changeme", 7)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	_, err = utils.VerifyJWT("other", token)
	if !errors.Is(err, utils.ErrInvalidAPIKey) {
		t.Errorf("expected ErrInvalidAPIKey, got %v", err)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	t.Parallel()

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "root"}).
		SignedString([]byte("changeme"))
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	for name, token := range map[string]string{
		"garbage":     "not-a-token",
		"none":        noneToken,
		"bad subject": badSubject,
		"empty":       "",
	} {
		_, err := utils.VerifyJWT("changeme", token)
		if !errors.Is(err, utils.ErrInvalidAPIKey) {
			t.Errorf("%s: expected ErrInvalidAPIKey, got %v", name, err)
		}
	}
}
