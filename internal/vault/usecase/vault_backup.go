package usecase

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/shandysiswandi/otpdeck/internal/pkg/goerror"
	"github.com/shandysiswandi/otpdeck/internal/pkg/storage"
	"github.com/shandysiswandi/otpdeck/internal/vault/entity"
)

type VaultBackupOutput struct {
	Key   string
	Count int
}

// VaultBackup writes a JSON snapshot of every token, plaintext secrets
// included, to object storage and returns the object key. Backup is an
// operator feature; the endpoint sits behind the session JWT like the rest.
func (s *Usecase) VaultBackup(ctx context.Context) (*VaultBackupOutput, error) {
	ctx, span := s.startSpan(ctx, "VaultBackup")
	defer span.End()

	if _, err := s.authenticated(ctx); err != nil {
		return nil, err
	}

	rows, err := s.repoDB.ListTokens(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list tokens for backup", "error", err)
		return nil, goerror.NewServer(err)
	}

	entries := make([]entity.BackupEntry, 0, len(rows))
	for i := range rows {
		secret, err := s.decryptSecret(&rows[i])
		if err != nil {
			slog.ErrorContext(ctx, "failed to decrypt secret for backup", "token_id", rows[i].ID, "error", err)
			return nil, goerror.NewServer(err)
		}

		entries = append(entries, entity.BackupEntry{
			ID:        rows[i].ID,
			Label:     rows[i].Label,
			Issuer:    rows[i].Issuer,
			Secret:    secret,
			Digits:    rows[i].Digits,
			Period:    rows[i].Period,
			Algorithm: rows[i].Algorithm.String(),
			Source:    rows[i].Source.String(),
		})
	}

	body, err := json.Marshal(entries)
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	key := "backups/vault-" + s.clock.Now().UTC().Format("20060102T150405Z") + ".json"
	if _, err := s.blob.Put(ctx, key, body, storage.PutOptions{ContentType: "application/json"}); err != nil {
		slog.ErrorContext(ctx, "failed to upload vault backup", "key", key, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &VaultBackupOutput{Key: key, Count: len(entries)}, nil
}
