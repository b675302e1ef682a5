// Package testutil provides shared helpers for package tests.
package testutil

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"orderDeliveryManagement/internal/db"
)

var dbSeq atomic.Int64

// OpenDB opens a fresh in-memory SQLite database with migrations applied.
// Each call gets its own named database; a single connection is shared so
// concurrent test goroutines serialize on it instead of hitting
// SQLITE_LOCKED.
func OpenDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", dbSeq.Add(1))
	d, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	d.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// JWT builds a signed HS256 token for the given identity.
func JWT(t *testing.T, secret string, userID int64, username, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"uid":  userID,
		"name": username,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return signed
}
