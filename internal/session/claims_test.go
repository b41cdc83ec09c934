package session

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

// buildToken assembles an unsigned JWT-shaped credential from the given
// payload, the same shape the auth server issues.
func buildToken(t *testing.T, payload map[string]interface{}) string {
	t.Helper()

	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	hb, err := json.Marshal(header)
	if err != nil {
		t.Fatal(err)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}

	enc := base64.RawURLEncoding
	return enc.EncodeToString(hb) + "." + enc.EncodeToString(pb) + ".c2lnbmF0dXJl"
}

func TestDecodeClaims(t *testing.T) {
	valid := buildToken(t, map[string]interface{}{
		"jti":       "user-42",
		"sub":       "admin",
		"FirstName": "Vignesh",
		"LastName":  "Pandian",
	})

	tests := []struct {
		name   string
		token  string
		wantOK bool
	}{
		{"valid token", valid, true},
		{"empty token", "", false},
		{"not a token", "garbage", false},
		{"two segments", "abc.def", false},
		{"bad base64 payload", "eyJhbGciOiJIUzI1NiJ9.%%%.sig", false},
		{
			"missing identity claims",
			buildToken(t, map[string]interface{}{"FirstName": "No", "LastName": "ID"}),
			false,
		},
		{
			"non-string jti",
			buildToken(t, map[string]interface{}{"jti": 42, "sub": "admin"}),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, ok := DecodeClaims(tt.token)
			if ok != tt.wantOK {
				t.Fatalf("DecodeClaims ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok && claims != nil {
				t.Error("expected nil claims on failed decode")
			}
		})
	}
}

func TestDecodeClaims_Fields(t *testing.T) {
	token := buildToken(t, map[string]interface{}{
		"jti":       "user-42",
		"sub":       "admin",
		"FirstName": "Vignesh",
		"LastName":  "Pandian",
	})

	claims, ok := DecodeClaims(token)
	if !ok {
		t.Fatal("expected successful decode")
	}
	if claims.ID != "user-42" || claims.Subject != "admin" {
		t.Errorf("unexpected identity: %+v", claims)
	}
	if claims.FullName() != "Vignesh Pandian" {
		t.Errorf("FullName = %q", claims.FullName())
	}

	user := claims.User(token)
	if user.IsDemo {
		t.Error("restored user must not be a demo user")
	}
	if user.Username != "admin" || user.Token != token {
		t.Errorf("unexpected user: %+v", user)
	}
}
