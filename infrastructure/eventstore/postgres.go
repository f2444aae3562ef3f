package eventstore

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/Masterminds/squirrel"
	"github.com/vfg2006/marketing-attribution-api/infrastructure/database/postgres"
)

const (
	kvTable       = "attribution_kv"
	orderedTable  = "attribution_ordered"
	countersTable = "attribution_counters"
	setsTable     = "attribution_sets"
)

// PostgresStore é o backend SQL do Store, para instalações que já operam
// Postgres e não querem manter um Redis. Incrementos usam upsert com soma no
// conflito, o que mantém a atomicidade no servidor
type PostgresStore struct {
	conn *postgres.Connection
}

func NewPostgresStore(conn *postgres.Connection) *PostgresStore {
	return &PostgresStore{conn: conn}
}

func (s *PostgresStore) Put(ctx context.Context, key, value string) error {
	query, args, err := squirrel.
		Insert(kvTable).
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := s.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := squirrel.
		Select("value").
		From(kvTable).
		Where(squirrel.Eq{"key": key}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", false, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var value string
	if err := s.conn.QueryRow(ctx, query, args...).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, true, nil
}

func (s *PostgresStore) AppendOrdered(ctx context.Context, key string, score float64, value string) error {
	query, args, err := squirrel.
		Insert(orderedTable).
		Columns("key", "score", "value").
		Values(key, score, value).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := s.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) RangeOrdered(ctx context.Context, key string, from, to float64) ([]string, error) {
	builder := squirrel.
		Select("value").
		From(orderedTable).
		Where(squirrel.Eq{"key": key}).
		OrderBy("score ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar)

	if !math.IsInf(from, -1) {
		builder = builder.Where(squirrel.GtOrEq{"score": from})
	}
	if !math.IsInf(to, 1) {
		builder = builder.Where(squirrel.LtOrEq{"score": to})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("erro ao escanear valor ordenado: %w", err)
		}
		values = append(values, value)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return values, nil
}

func (s *PostgresStore) Increment(ctx context.Context, key string, by float64) (float64, error) {
	query, args, err := squirrel.
		Insert(countersTable).
		Columns("key", "value").
		Values(key, by).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = " + countersTable + ".value + EXCLUDED.value RETURNING value").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var newValue float64
	if err := s.conn.QueryRow(ctx, query, args...).Scan(&newValue); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return newValue, nil
}

func (s *PostgresStore) SetAdd(ctx context.Context, key, member string) error {
	query, args, err := squirrel.
		Insert(setsTable).
		Columns("key", "member").
		Values(key, member).
		Suffix("ON CONFLICT (key, member) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if _, err := s.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *PostgresStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	query, args, err := squirrel.
		Select("member").
		From(setsTable).
		Where(squirrel.Eq{"key": key}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	members := make([]string, 0)
	for rows.Next() {
		var member string
		if err := rows.Scan(&member); err != nil {
			return nil, fmt.Errorf("erro ao escanear membro do conjunto: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return members, nil
}
