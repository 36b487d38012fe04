package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/dedupe"
	"github.com/sells-group/outreach-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id             TEXT PRIMARY KEY,
	normalized_url TEXT NOT NULL UNIQUE,
	status         TEXT NOT NULL DEFAULT 'new',
	source         TEXT NOT NULL DEFAULT '',
	data           JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS contacts (
	id             TEXT PRIMARY KEY,
	normalized_url TEXT NOT NULL UNIQUE,
	status         TEXT NOT NULL DEFAULT 'pending',
	position       INTEGER NOT NULL DEFAULT 0,
	data           JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS seen_urls (
	url TEXT PRIMARY KEY
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
CREATE INDEX IF NOT EXISTS idx_contacts_status ON contacts(status);
CREATE INDEX IF NOT EXISTS idx_contacts_position ON contacts(position);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveLeads(ctx context.Context, leads []model.Lead) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin save leads")
	}
	defer tx.Rollback(ctx)

	saved := 0
	for _, lead := range leads {
		data, err := json.Marshal(lead)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal lead %s", lead.ID)
		}
		tag, err := tx.Exec(ctx,
			`INSERT INTO leads (id, normalized_url, status, source, data, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (normalized_url) DO NOTHING`,
			lead.ID, dedupe.NormalizeProfileURL(lead.ProfileURL), string(lead.Status), lead.Source,
			data, lead.CreatedAt, lead.UpdatedAt,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: insert lead %s", lead.ID)
		}
		saved += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit save leads")
	}
	return saved, nil
}

func (s *PostgresStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT data FROM leads WHERE 1=1`
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $1`
	}
	if filter.Source != "" {
		args = append(args, filter.Source)
		query += ` AND source = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		var lead model.Lead
		if err := json.Unmarshal(data, &lead); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal lead")
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: list leads iterate")
}

func (s *PostgresStore) UpdateLeadStatus(ctx context.Context, leadID string, status model.LeadStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE leads
		 SET status = $1, updated_at = $2,
		     data = jsonb_set(jsonb_set(data, '{status}', to_jsonb($1::text)), '{updated_at}', to_jsonb($2::timestamptz))
		 WHERE id = $3`,
		string(status), time.Now().UTC(), leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update lead status %s", leadID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("lead not found: %s", leadID)
	}
	return nil
}

func (s *PostgresStore) SaveContacts(ctx context.Context, contacts []model.Contact) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin save contacts")
	}
	defer tx.Rollback(ctx)

	for _, c := range contacts {
		data, err := json.Marshal(c)
		if err != nil {
			return eris.Wrapf(err, "postgres: marshal contact %s", c.ID)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO contacts (id, normalized_url, status, position, data)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, position = EXCLUDED.position, data = EXCLUDED.data`,
			c.ID, dedupe.NormalizeProfileURL(c.ProfileURL), string(c.MessageStatus), c.Position, data,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert contact %s", c.ID)
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit save contacts")
}

func (s *PostgresStore) ListContacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM contacts ORDER BY position ASC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan contact")
		}
		var c model.Contact
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal contact")
		}
		contacts = append(contacts, c)
	}
	return contacts, eris.Wrap(rows.Err(), "postgres: list contacts iterate")
}

func (s *PostgresStore) UpdateContact(ctx context.Context, contact model.Contact) error {
	data, err := json.Marshal(contact)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal contact %s", contact.ID)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE contacts SET status = $1, position = $2, data = $3 WHERE id = $4`,
		string(contact.MessageStatus), contact.Position, data, contact.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update contact %s", contact.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("contact not found: %s", contact.ID)
	}
	return nil
}

func (s *PostgresStore) ResetQueue(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM contacts`)
	return eris.Wrap(err, "postgres: reset queue")
}

func (s *PostgresStore) ListSeenURLs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT url FROM seen_urls`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list seen urls")
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, eris.Wrap(err, "postgres: scan seen url")
		}
		urls = append(urls, u)
	}
	return urls, eris.Wrap(rows.Err(), "postgres: list seen urls iterate")
}

func (s *PostgresStore) ReplaceSeenURLs(ctx context.Context, urls []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin replace seen urls")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM seen_urls`); err != nil {
		return eris.Wrap(err, "postgres: clear seen urls")
	}
	for _, u := range urls {
		if _, err := tx.Exec(ctx, `INSERT INTO seen_urls (url) VALUES ($1) ON CONFLICT DO NOTHING`, u); err != nil {
			return eris.Wrap(err, "postgres: insert seen url")
		}
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit replace seen urls")
}
