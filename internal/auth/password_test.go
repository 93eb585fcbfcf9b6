package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "valid password", password: "correct horse", wantErr: nil},
		{name: "too short", password: "short", wantErr: ErrPasswordTooShort},
		{name: "at minimum length", password: "12345678", wantErr: nil},
		{name: "multibyte counts runes", password: "пароль12", wantErr: nil},
		{name: "too long", password: strings.Repeat("a", 73), wantErr: ErrPasswordTooLong},
		{name: "at maximum length", password: strings.Repeat("a", 72), wantErr: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, 4)
			if err != tt.wantErr {
				t.Errorf("HashPassword() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr == nil && hash == "" {
				t.Error("HashPassword() returned empty hash for valid password")
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	password := "testpassword123"
	hash, err := HashPassword(password, 4)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "correct password", password: password, wantErr: nil},
		{name: "incorrect password", password: "wrongpassword", wantErr: ErrInvalidPassword},
		{name: "empty password", password: "", wantErr: ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPassword(tt.password, hash)
			if err != tt.wantErr {
				t.Errorf("CheckPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
