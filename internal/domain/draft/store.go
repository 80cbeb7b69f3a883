package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"flexipayslip/internal/domain/payslip"
	cryptoutil "flexipayslip/internal/platform/crypto"
)

// Store persists drafts in Postgres. The payload is sealed with the data
// encryption key when one is configured.
type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool, crypto *cryptoutil.Service) *Store {
	return &Store{DB: db, Crypto: crypto}
}

type payload struct {
	Document payslip.Document `json:"document"`
	Theme    string           `json:"theme"`
	Logo     []byte           `json:"logo,omitempty"`
	LogoType string           `json:"logoType,omitempty"`
}

func (s *Store) sealed() bool {
	return s.Crypto != nil && s.Crypto.Configured()
}

func (s *Store) Get(ctx context.Context, id string) (Draft, error) {
	var raw []byte
	var sealed bool
	d := Draft{ID: id}
	err := s.DB.QueryRow(ctx, `
    SELECT payload, sealed, created_at, updated_at
    FROM drafts
    WHERE id = $1
  `, id).Scan(&raw, &sealed, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Draft{}, ErrNotFound
	}
	if err != nil {
		return Draft{}, err
	}

	if sealed {
		if !s.sealed() {
			return Draft{}, ErrSealed
		}
		raw, err = s.Crypto.Decrypt(raw)
		if err != nil {
			return Draft{}, fmt.Errorf("decrypt draft %s: %w", id, err)
		}
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Draft{}, fmt.Errorf("decode draft %s: %w", id, err)
	}
	d.Document = p.Document
	d.Theme = p.Theme
	d.Logo = p.Logo
	d.LogoType = p.LogoType
	return d, nil
}

func (s *Store) Put(ctx context.Context, d Draft) error {
	raw, err := json.Marshal(payload{
		Document: d.Document,
		Theme:    d.Theme,
		Logo:     d.Logo,
		LogoType: d.LogoType,
	})
	if err != nil {
		return err
	}
	sealed := s.sealed()
	if sealed {
		if raw, err = s.Crypto.Encrypt(raw); err != nil {
			return fmt.Errorf("encrypt draft %s: %w", d.ID, err)
		}
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO drafts (id, payload, sealed, created_at, updated_at)
    VALUES ($1,$2,$3,$4,$5)
    ON CONFLICT (id) DO UPDATE
    SET payload = EXCLUDED.payload, sealed = EXCLUDED.sealed, updated_at = EXCLUDED.updated_at
  `, d.ID, raw, sealed, d.CreatedAt, d.UpdatedAt)
	return err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, `DELETE FROM drafts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, `DELETE FROM drafts WHERE updated_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
