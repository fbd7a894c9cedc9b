package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/otpdeck/internal/pkg/goerror"
	"github.com/shandysiswandi/otpdeck/internal/vault/entity"
)

const insertTokenSQL = `
INSERT INTO vault_tokens (id, label, issuer, secret_ciphertext, digits, period, algorithm, source, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const selectTokenSQL = `
SELECT id, label, issuer, secret_ciphertext, digits, period, algorithm, source, metadata, created_at
FROM vault_tokens`

func (s *DB) CreateToken(ctx context.Context, in entity.StoredToken) (err error) {
	ctx, span := s.startSpan(ctx, "CreateToken")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, insertTokenSQL,
		in.ID, in.Label, in.Issuer, in.SecretCiphertext,
		in.Digits, in.Period, in.Algorithm, in.Source, in.Metadata, in.CreatedAt,
	)

	err = s.mapError(err)
	return err
}

// CreateTokens inserts a batch inside one transaction so a migration import
// is all-or-nothing.
func (s *DB) CreateTokens(ctx context.Context, in []entity.StoredToken) (err error) {
	ctx, span := s.startSpan(ctx, "CreateTokens")
	defer func() { s.endSpan(span, err) }()

	if len(in) == 0 {
		return nil
	}

	err = pgx.BeginFunc(ctx, s.conn, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, t := range in {
			batch.Queue(insertTokenSQL,
				t.ID, t.Label, t.Issuer, t.SecretCiphertext,
				t.Digits, t.Period, t.Algorithm, t.Source, t.Metadata, t.CreatedAt,
			)
		}

		return tx.SendBatch(ctx, batch).Close()
	})

	err = s.mapError(err)
	return err
}

func (s *DB) GetToken(ctx context.Context, id int64) (_ *entity.StoredToken, err error) {
	ctx, span := s.startSpan(ctx, "GetToken")
	defer func() { s.endSpan(span, err) }()

	row := s.conn.QueryRow(ctx, selectTokenSQL+" WHERE id = $1", id)

	var t entity.StoredToken
	err = row.Scan(&t.ID, &t.Label, &t.Issuer, &t.SecretCiphertext,
		&t.Digits, &t.Period, &t.Algorithm, &t.Source, &t.Metadata, &t.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &t, nil
}

func (s *DB) ListTokens(ctx context.Context) (_ []entity.StoredToken, err error) {
	ctx, span := s.startSpan(ctx, "ListTokens")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, selectTokenSQL+" ORDER BY created_at, id")
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	out := make([]entity.StoredToken, 0)
	for rows.Next() {
		var t entity.StoredToken
		if err = rows.Scan(&t.ID, &t.Label, &t.Issuer, &t.SecretCiphertext,
			&t.Digits, &t.Period, &t.Algorithm, &t.Source, &t.Metadata, &t.CreatedAt); err != nil {
			return nil, s.mapError(err)
		}
		out = append(out, t)
	}

	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

func (s *DB) DeleteToken(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteToken")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, "DELETE FROM vault_tokens WHERE id = $1", id)
	if err != nil {
		err = s.mapError(err)
		return err
	}

	if tag.RowsAffected() == 0 {
		err = goerror.ErrNotFound
		return err
	}

	return nil
}
