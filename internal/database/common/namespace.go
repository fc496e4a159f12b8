package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/Masterminds/squirrel"
)

// MetaTable records the schema version of every namespace.
const MetaTable = "_tablestate_meta"

var identRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

var ErrUnsupportedVersion = errors.New("stored schema version is newer than supported")

// ValidateNamespace rejects names that cannot be used as a bare table
// identifier on every provider.
func ValidateNamespace(name string) error {
	if !identRegex.MatchString(name) {
		return fmt.Errorf("invalid namespace %q: use letters, digits and underscores", name)
	}
	return nil
}

// CheckVersion fails when the stored version is newer than want.
func CheckVersion(namespace string, stored, want int) error {
	if stored > want {
		return fmt.Errorf("%w: namespace %s is at version %d, this build supports %d",
			ErrUnsupportedVersion, namespace, stored, want)
	}
	return nil
}

// EnsureVersion records version for namespace inside tx, or checks it
// against an existing record. An older record is bumped to version.
func EnsureVersion(ctx context.Context, tx *sql.Tx, qb squirrel.StatementBuilderType, namespace string, version int) error {
	query, args, err := qb.Select("version").From(MetaTable).
		Where(squirrel.Eq{"name": namespace}).ToSql()
	if err != nil {
		return err
	}

	var stored int
	err = tx.QueryRowContext(ctx, query, args...).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		query, args, err = qb.Insert(MetaTable).Columns("name", "version").
			Values(namespace, version).ToSql()
	case err != nil:
		return fmt.Errorf("failed to read schema version: %w", err)
	default:
		if err := CheckVersion(namespace, stored, version); err != nil {
			return err
		}
		if stored == version {
			return nil
		}
		query, args, err = qb.Update(MetaTable).Set("version", version).
			Where(squirrel.Eq{"name": namespace}).ToSql()
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}
