package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chaman/hospital/internal/platform/apperr"
)

// PostgreSQL error codes translated by Classify.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeInvalidText         = "22P02"
)

// Classify translates a pgx error into the apperr taxonomy. entity names
// the row type for not-found messages. op labels unexpected failures in
// logs; a foreign key violation during an op starting with "delete" means
// other rows still reference the target.
func Classify(entity, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(entity)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return apperr.ErrDuplicate
		case codeForeignKeyViolation:
			if strings.HasPrefix(op, "delete") {
				return apperr.ErrHasDependents
			}
			return apperr.Validation("Referenced record does not exist")
		case codeNotNullViolation:
			return apperr.Validation("%s is required", pgErr.ColumnName)
		case codeInvalidText:
			return apperr.Validation("Invalid identifier")
		}
	}
	return apperr.StoreFailure(op, err)
}
