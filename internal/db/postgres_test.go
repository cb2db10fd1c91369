package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/attendly/attendly/internal/pkg/apperrors"
)

func TestRollbackErrorKeepsBothCauses(t *testing.T) {
	connLost := errors.New("conn closed")

	err := rollbackError(apperrors.ErrAllocationHasLectures, connLost)

	assert.ErrorIs(t, err, apperrors.ErrHasRelations)
	assert.ErrorIs(t, err, connLost)
	assert.Contains(t, err.Error(), "rollback failed")
}
