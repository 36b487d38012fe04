package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/outreach-cli/internal/dedupe"
	"github.com/sells-group/outreach-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id             TEXT PRIMARY KEY,
	normalized_url TEXT NOT NULL UNIQUE,
	status         TEXT NOT NULL DEFAULT 'new',
	source         TEXT NOT NULL DEFAULT '',
	data           TEXT NOT NULL,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS contacts (
	id             TEXT PRIMARY KEY,
	normalized_url TEXT NOT NULL UNIQUE,
	status         TEXT NOT NULL DEFAULT 'pending',
	position       INTEGER NOT NULL DEFAULT 0,
	data           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS seen_urls (
	url TEXT PRIMARY KEY
);

CREATE INDEX IF NOT EXISTS idx_leads_status ON leads(status);
CREATE INDEX IF NOT EXISTS idx_leads_source ON leads(source);
CREATE INDEX IF NOT EXISTS idx_contacts_status ON contacts(status);
CREATE INDEX IF NOT EXISTS idx_contacts_position ON contacts(position);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveLeads(ctx context.Context, leads []model.Lead) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin save leads")
	}
	defer tx.Rollback()

	saved := 0
	for _, lead := range leads {
		data, err := json.Marshal(lead)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal lead %s", lead.ID)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO leads (id, normalized_url, status, source, data, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(normalized_url) DO NOTHING`,
			lead.ID, dedupe.NormalizeProfileURL(lead.ProfileURL), string(lead.Status), lead.Source,
			string(data), lead.CreatedAt, lead.UpdatedAt,
		)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert lead %s", lead.ID)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		saved += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit save leads")
	}
	return saved, nil
}

func (s *SQLiteStore) ListLeads(ctx context.Context, filter LeadFilter) ([]model.Lead, error) {
	query := `SELECT data FROM leads WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Source != "" {
		query += ` AND source = ?`
		args = append(args, filter.Source)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 500
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		var lead model.Lead
		if err := json.Unmarshal([]byte(data), &lead); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal lead")
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: list leads iterate")
}

func (s *SQLiteStore) UpdateLeadStatus(ctx context.Context, leadID string, status model.LeadStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE leads
		 SET status = ?, updated_at = ?,
		     data = json_set(data, '$.status', ?, '$.updated_at', ?)
		 WHERE id = ?`,
		string(status), time.Now().UTC(), string(status), time.Now().UTC().Format(time.RFC3339Nano), leadID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update lead status %s", leadID)
	}
	return checkRowsAffected(res, "lead", leadID)
}

func (s *SQLiteStore) SaveContacts(ctx context.Context, contacts []model.Contact) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save contacts")
	}
	defer tx.Rollback()

	for _, c := range contacts {
		data, err := json.Marshal(c)
		if err != nil {
			return eris.Wrapf(err, "sqlite: marshal contact %s", c.ID)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO contacts (id, normalized_url, status, position, data)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET status = excluded.status, position = excluded.position, data = excluded.data`,
			c.ID, dedupe.NormalizeProfileURL(c.ProfileURL), string(c.MessageStatus), c.Position, string(data),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert contact %s", c.ID)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit save contacts")
}

func (s *SQLiteStore) ListContacts(ctx context.Context) ([]model.Contact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM contacts ORDER BY position ASC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list contacts")
	}
	defer rows.Close()

	var contacts []model.Contact
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan contact")
		}
		var c model.Contact
		if err := json.Unmarshal([]byte(data), &c); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal contact")
		}
		contacts = append(contacts, c)
	}
	return contacts, eris.Wrap(rows.Err(), "sqlite: list contacts iterate")
}

func (s *SQLiteStore) UpdateContact(ctx context.Context, contact model.Contact) error {
	data, err := json.Marshal(contact)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal contact %s", contact.ID)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE contacts SET status = ?, position = ?, data = ? WHERE id = ?`,
		string(contact.MessageStatus), contact.Position, string(data), contact.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update contact %s", contact.ID)
	}
	return checkRowsAffected(res, "contact", contact.ID)
}

func (s *SQLiteStore) ResetQueue(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM contacts`)
	return eris.Wrap(err, "sqlite: reset queue")
}

func (s *SQLiteStore) ListSeenURLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url FROM seen_urls`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list seen urls")
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan seen url")
		}
		urls = append(urls, u)
	}
	return urls, eris.Wrap(rows.Err(), "sqlite: list seen urls iterate")
}

func (s *SQLiteStore) ReplaceSeenURLs(ctx context.Context, urls []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin replace seen urls")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM seen_urls`); err != nil {
		return eris.Wrap(err, "sqlite: clear seen urls")
	}
	for _, u := range urls {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO seen_urls (url) VALUES (?)`, u); err != nil {
			return eris.Wrap(err, "sqlite: insert seen url")
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit replace seen urls")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}
