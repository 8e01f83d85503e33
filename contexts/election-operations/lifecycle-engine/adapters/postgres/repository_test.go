package postgresadapter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

// Only code 23505 marks a duplicate; every other store error must surface
// as a plain failure, never as a domain conflict sentinel.
func TestUniqueViolationClassification(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "election_races_election_id_name_key"}
	if !isUniqueViolation(dup) {
		t.Fatal("23505 must classify as a unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("save race: %w", dup)) {
		t.Fatal("wrapped 23505 must classify as a unique violation")
	}

	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign-key violation must not classify as a unique violation")
	}
	if isUniqueViolation(errors.New("connection reset")) {
		t.Fatal("plain errors must not classify as a unique violation")
	}
}
