package repository

import (
	"errors"

	"github.com/lib/pq"
)

// isUniqueViolation Postgres unique constraint ihlalini ayırt eder.
// Uniqueness constraint'leri idempotency guard olarak kullanılır
// (günlük talepler, sandık katılımları, milestone ödülleri).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
