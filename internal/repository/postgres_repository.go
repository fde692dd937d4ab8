package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prajwalbharadwajbm/fundledger/internal/database"
	"github.com/prajwalbharadwajbm/fundledger/internal/models"
	"github.com/prajwalbharadwajbm/fundledger/internal/service"
)

// ledgerLockKey is the advisory lock every unit of work holds for its transaction
const ledgerLockKey int64 = 0x66756e646c6564 // "fundled"

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresRepository implements service.LedgerStore using PostgreSQL
type PostgresRepository struct {
	pgReader
	db *database.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{
		pgReader: pgReader{q: db},
		db:       db,
	}
}

// InitOwner installs owner as the admin principal unless one is already recorded
func (r *PostgresRepository) InitOwner(ctx context.Context, owner models.Address) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ledger_owner (id, owner) VALUES (1, $1)
		ON CONFLICT (id) DO NOTHING
	`, owner)
	if err != nil {
		return fmt.Errorf("failed to initialise owner: %w", err)
	}
	return nil
}

// Atomic implements service.LedgerStore. Each unit of work is one transaction
// serialized with every other unit by a transaction-scoped advisory lock.
func (r *PostgresRepository) Atomic(ctx context.Context, fn func(tx service.LedgerTx) error) (err error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
			}
		}
	}()

	if _, err = sqlTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, ledgerLockKey); err != nil {
		return fmt.Errorf("failed to acquire ledger lock: %w", err)
	}

	if err = fn(&pgTx{pgReader: pgReader{q: sqlTx}, tx: sqlTx}); err != nil {
		return err
	}

	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// pgReader implements service.LedgerReader over a querier
type pgReader struct {
	q querier
}

const campaignColumns = `id, creator, goal, name, description, image_url, is_successful, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (models.Campaign, error) {
	var c models.Campaign
	var id int64
	err := row.Scan(
		&id,
		&c.Creator,
		&c.Goal,
		&c.Name,
		&c.Description,
		&c.ImageURL,
		&c.IsSuccessful,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	c.ID = uint64(id)
	return c, err
}

func (r pgReader) GetCampaign(ctx context.Context, id uint64) (models.Campaign, error) {
	if id > maxID {
		return models.Campaign{}, models.CampaignNotFound(id)
	}
	row := r.q.QueryRowContext(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, int64(id))
	c, err := scanCampaign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Campaign{}, models.CampaignNotFound(id)
	}
	if err != nil {
		return models.Campaign{}, fmt.Errorf("failed to query campaign: %w", err)
	}
	return c, nil
}

func (r pgReader) ListCampaigns(ctx context.Context) ([]models.Campaign, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+campaignColumns+` FROM campaigns ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := make([]models.Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over campaign rows: %w", err)
	}
	return campaigns, nil
}

func (r pgReader) GetContribution(ctx context.Context, id uint64, contributor models.Address) (models.Contribution, error) {
	c := models.Contribution{CampaignID: id, Contributor: contributor}
	err := r.q.QueryRowContext(ctx, `
		SELECT amount, asset FROM contributions
		WHERE campaign_id = $1 AND contributor = $2
	`, int64(id), contributor).Scan(&c.Amount, &c.Asset)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EmptyContribution(id, contributor), nil
	}
	if err != nil {
		return models.Contribution{}, fmt.Errorf("failed to query contribution: %w", err)
	}
	return c, nil
}

func (r pgReader) IsAuthorisedToken(ctx context.Context, asset models.Address) (bool, error) {
	var authorised bool
	err := r.q.QueryRowContext(ctx, `SELECT authorised FROM authorised_tokens WHERE asset = $1`, asset).Scan(&authorised)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query token authorisation: %w", err)
	}
	return authorised, nil
}

func (r pgReader) Owner(ctx context.Context) (models.Address, error) {
	var owner models.Address
	err := r.q.QueryRowContext(ctx, `SELECT owner FROM ledger_owner WHERE id = 1`).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query owner: %w", err)
	}
	return owner, nil
}

func (r pgReader) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	var campaignID sql.NullInt64
	if filter.CampaignID != nil {
		campaignID = sql.NullInt64{Int64: int64(*filter.CampaignID), Valid: true}
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT seq, payload, recorded_at FROM ledger_events
		WHERE seq > $1
		  AND ($2 = '' OR type = $2)
		  AND ($3::BIGINT IS NULL OR campaign_id = $3)
		ORDER BY seq
		LIMIT $4
	`, int64(filter.AfterSeq), string(filter.Type), campaignID, filter.EffectiveLimit())
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		var (
			seq        int64
			payload    []byte
			recordedAt time.Time
			e          models.Event
		)
		if err := rows.Scan(&seq, &payload, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("failed to decode event %d: %w", seq, err)
		}
		e.Seq = uint64(seq)
		e.RecordedAt = recordedAt
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over event rows: %w", err)
	}
	return events, nil
}

// maxID is the largest id a BIGINT column can hold
const maxID = uint64(1<<63 - 1)

// pgTx implements service.LedgerTx inside an open transaction
type pgTx struct {
	pgReader
	tx *sql.Tx
}

func (t *pgTx) InsertCampaign(ctx context.Context, c models.Campaign) (uint64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO campaigns (id, creator, goal, name, description, image_url, is_successful, created_at, updated_at)
		SELECT COALESCE(MAX(id) + 1, 0), $1::TEXT, $2::NUMERIC, $3::TEXT, $4::TEXT, $5::TEXT, $6::BOOLEAN, $7::TIMESTAMPTZ, $8::TIMESTAMPTZ
		FROM campaigns
		RETURNING id
	`, c.Creator, c.Goal, c.Name, c.Description, c.ImageURL, c.IsSuccessful, c.CreatedAt, c.UpdatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert campaign: %w", err)
	}
	return uint64(id), nil
}

func (t *pgTx) SaveCampaign(ctx context.Context, c models.Campaign) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE campaigns
		SET goal = $2, name = $3, description = $4, image_url = $5, is_successful = $6, updated_at = $7
		WHERE id = $1
	`, int64(c.ID), c.Goal, c.Name, c.Description, c.ImageURL, c.IsSuccessful, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.CampaignNotFound(c.ID)
	}
	return nil
}

func (t *pgTx) SaveContribution(ctx context.Context, c models.Contribution) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO contributions (campaign_id, contributor, amount, asset, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (campaign_id, contributor)
		DO UPDATE SET amount = EXCLUDED.amount, asset = EXCLUDED.asset, updated_at = NOW()
	`, int64(c.CampaignID), c.Contributor, c.Amount, c.Asset)
	if err != nil {
		return fmt.Errorf("failed to save contribution: %w", err)
	}
	return nil
}

func (t *pgTx) SetAuthorisedToken(ctx context.Context, asset models.Address, authorised bool) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO authorised_tokens (asset, authorised, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (asset)
		DO UPDATE SET authorised = EXCLUDED.authorised, updated_at = NOW()
	`, asset, authorised)
	if err != nil {
		return fmt.Errorf("failed to set token authorisation: %w", err)
	}
	return nil
}

func (t *pgTx) SetOwner(ctx context.Context, owner models.Address) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO ledger_owner (id, owner, updated_at) VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET owner = EXCLUDED.owner, updated_at = NOW()
	`, owner)
	if err != nil {
		return fmt.Errorf("failed to set owner: %w", err)
	}
	return nil
}

func (t *pgTx) AppendEvent(ctx context.Context, e models.Event) (models.Event, error) {
	var seq int64
	if err := t.tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM ledger_events`).Scan(&seq); err != nil {
		return models.Event{}, fmt.Errorf("failed to allocate event sequence: %w", err)
	}
	e.Seq = uint64(seq)

	payload, err := json.Marshal(e)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to encode event: %w", err)
	}

	var campaignID sql.NullInt64
	if e.CampaignID != nil {
		campaignID = sql.NullInt64{Int64: int64(*e.CampaignID), Valid: true}
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO ledger_events (seq, type, campaign_id, payload, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`, seq, string(e.Type), campaignID, string(payload), e.RecordedAt)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to append event: %w", err)
	}
	return e, nil
}
