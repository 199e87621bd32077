package auth

import (
	"testing"
	"time"
)

func TestIssueParseRoundTrip(t *testing.T) {
	pair, err := Issue("u1", RoleParticipant, "p1", "absensi-magang", "secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := Parse(pair.AccessToken, "secret", "absensi-magang")
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "u1" || claims.Role != RoleParticipant || claims.ParticipantID != "p1" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	pair, err := Issue("u1", RoleAdmin, "", "absensi-magang", "secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(pair.AccessToken, "other-secret", "absensi-magang"); err == nil {
		t.Fatal("wrong key should fail")
	}
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	pair, err := Issue("u1", RoleAdmin, "", "someone-else", "secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(pair.AccessToken, "secret", "absensi-magang"); err == nil {
		t.Fatal("issuer mismatch should fail")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	pair, err := Issue("u1", RoleAdmin, "", "absensi-magang", "secret", -time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(pair.AccessToken, "secret", "absensi-magang"); err == nil {
		t.Fatal("expired token should fail")
	}
}
