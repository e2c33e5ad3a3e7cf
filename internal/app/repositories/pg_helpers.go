package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/studyhub/internal/db"
)

func countRows(ctx context.Context, database *db.PostgresDB, table string, where squirrel.Sqlizer) (int, error) {
	sql, args, err := squirrel.Select("COUNT(*)").From(table).Where(where).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building count query: %w", err)
	}

	var total int
	if err := database.Pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("error counting %s: %w", table, err)
	}
	return total, nil
}

func paginateQuery(query squirrel.SelectBuilder, offset, limit int) squirrel.SelectBuilder {
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	return query
}

func deleteByID(ctx context.Context, database *db.PostgresDB, table, id string) (bool, error) {
	n, ok := parseID(id)
	if !ok {
		return false, nil
	}
	sql, args, err := squirrel.Delete(table).Where(squirrel.Eq{"id": n}).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return false, fmt.Errorf("error building delete: %w", err)
	}

	tag, err := database.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("error deleting from %s: %w", table, err)
	}
	return tag.RowsAffected() > 0, nil
}
