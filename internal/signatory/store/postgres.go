package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"petition/internal/signatory/models"
	"petition/pkg/platform/sentinel"
)

//go:embed schema.sql
var schemaSQL string

// Postgres persists signatures in PostgreSQL. The unique index on the
// normalized email column is the authoritative duplicate guard; concurrent
// inserts for the same email serialize there and the loser receives
// sentinel.ErrAlreadyUsed.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed signature store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the signatories table and its indexes if missing.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure signatories schema: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, sig *models.Signatory) error {
	id := uuid.New()
	query := `
		INSERT INTO signatories (
			id, first_name, last_name, email, state, comments,
			consent_public, newsletter_opt_in, submitted_at,
			source_ip, device_fingerprint,
			is_congress_member, congressional_title, district
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		id, sig.FirstName, sig.LastName, sig.Email, sig.State, sig.Comments,
		sig.ConsentToPublicListing, sig.NewsletterOptIn, sig.SubmittedAt,
		sig.SourceIP, sig.DeviceFingerprint,
		sig.IsCongressMember, string(sig.CongressionalTitle), sig.District,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert signatory: %w", err)
	}

	sig.ID = id
	return nil
}

func (s *Postgres) EmailExists(ctx context.Context, normalizedEmail string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM signatories WHERE email = $1)`,
		normalizedEmail,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

func (s *Postgres) CountByIPSince(ctx context.Context, ip string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM signatories WHERE source_ip = $1 AND submitted_at >= $2`,
		ip, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count by ip: %w", err)
	}
	return count, nil
}

func (s *Postgres) CountByIPOrFingerprintSince(ctx context.Context, ip, fingerprint string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM signatories
		WHERE submitted_at >= $3
		  AND (source_ip = $1 OR ($2 <> '' AND device_fingerprint = $2))
	`, ip, fingerprint, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count by ip or fingerprint: %w", err)
	}
	return count, nil
}

func (s *Postgres) EmailsByDomainAndLocalPrefix(ctx context.Context, domain, localPrefix string) ([]string, error) {
	pattern := escapeLike(localPrefix) + "%@" + escapeLike(domain)
	rows, err := s.db.QueryContext(ctx,
		`SELECT email FROM signatories WHERE email LIKE $1`,
		pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("query similar emails: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, fmt.Errorf("scan similar email: %w", err)
		}
		emails = append(emails, addr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similar emails: %w", err)
	}
	return emails, nil
}

func (s *Postgres) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM signatories`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count signatories: %w", err)
	}
	return count, nil
}

func (s *Postgres) CountByCongressMember(ctx context.Context, isMember bool) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM signatories WHERE is_congress_member = $1`,
		isMember,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count by congress member: %w", err)
	}
	return count, nil
}

func (s *Postgres) StateBreakdown(ctx context.Context) ([]models.StateStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT state,
		       COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE is_congress_member)     AS congress_members,
		       COUNT(*) FILTER (WHERE NOT is_congress_member) AS constituents
		FROM signatories
		GROUP BY state
		ORDER BY total DESC, state ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query state breakdown: %w", err)
	}
	defer rows.Close()

	var breakdown []models.StateStats
	for rows.Next() {
		var st models.StateStats
		if err := rows.Scan(&st.State, &st.Total, &st.CongressMembers, &st.Constituents); err != nil {
			return nil, fmt.Errorf("scan state breakdown: %w", err)
		}
		breakdown = append(breakdown, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate state breakdown: %w", err)
	}
	return breakdown, nil
}

func (s *Postgres) ListRecent(ctx context.Context, limit int) ([]*models.Signatory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, email, state, comments,
		       consent_public, newsletter_opt_in, submitted_at,
		       source_ip, device_fingerprint,
		       is_congress_member, congressional_title, district
		FROM signatories
		ORDER BY submitted_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent signatories: %w", err)
	}
	defer rows.Close()

	var signatories []*models.Signatory
	for rows.Next() {
		var sig models.Signatory
		var title string
		if err := rows.Scan(
			&sig.ID, &sig.FirstName, &sig.LastName, &sig.Email, &sig.State, &sig.Comments,
			&sig.ConsentToPublicListing, &sig.NewsletterOptIn, &sig.SubmittedAt,
			&sig.SourceIP, &sig.DeviceFingerprint,
			&sig.IsCongressMember, &title, &sig.District,
		); err != nil {
			return nil, fmt.Errorf("scan signatory: %w", err)
		}
		sig.CongressionalTitle = models.CongressionalTitle(title)
		signatories = append(signatories, &sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signatories: %w", err)
	}
	return signatories, nil
}

// escapeLike escapes LIKE wildcards so user-controlled email fragments are
// matched literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
