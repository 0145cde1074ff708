package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/brawl"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ brawl.CrawlService = (*CrawlService)(nil)

// CrawlService implements brawl.CrawlService using SQLite.
type CrawlService struct {
	db *DB
}

// NewCrawlService creates a new CrawlService.
func NewCrawlService(db *DB) *CrawlService {
	return &CrawlService{db: db}
}

// DigestURLs computes an order-sensitive xxHash of a URL list as it appears
// in the output file and returns it as hex.
func DigestURLs(urls []string) string {
	d := xxhash.New()
	for _, u := range urls {
		_, _ = d.WriteString(u)
		_, _ = d.WriteString("\n")
	}
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, d.Sum64())
	return hex.EncodeToString(b)
}

const crawlColumns = "id, seed, started_at, finished_at, url_count, fetched, failed, canceled, digest"

// CreateCrawl stores a crawl and its URLs in a single transaction.
func (s *CrawlService) CreateCrawl(ctx context.Context, record *brawl.CrawlRecord, urls []string) error {
	if record.FinishedAt.IsZero() {
		record.FinishedAt = time.Now().UTC()
	}
	if err := record.Validate(); err != nil {
		return err
	}

	record.ID = uuid.New().String()
	record.URLCount = len(urls)
	record.Digest = DigestURLs(urls)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO crawls (`+crawlColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.Seed,
		record.StartedAt.UTC().Format(time.RFC3339), record.FinishedAt.UTC().Format(time.RFC3339),
		record.URLCount, record.Fetched, record.Failed, boolToInt(record.Canceled), record.Digest)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO crawl_urls (crawl_id, position, url) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, u := range urls {
		if _, err := stmt.ExecContext(ctx, record.ID, i, u); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindCrawlByID retrieves a crawl by ID.
func (s *CrawlService) FindCrawlByID(ctx context.Context, id string) (*brawl.CrawlRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+crawlColumns+" FROM crawls WHERE id = ?", id)

	record, err := scanCrawl(row)
	if err == sql.ErrNoRows {
		return nil, brawl.Errorf(brawl.ENOTFOUND, "crawl not found")
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// FindCrawls retrieves crawls matching the filter, newest first.
func (s *CrawlService) FindCrawls(ctx context.Context, filter brawl.CrawlFilter) ([]*brawl.CrawlRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + crawlColumns + " FROM crawls WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Seed != nil {
		query.WriteString(" AND seed = ?")
		args = append(args, *filter.Seed)
	}
	if filter.Digest != nil {
		query.WriteString(" AND digest = ?")
		args = append(args, *filter.Digest)
	}

	query.WriteString(" ORDER BY started_at DESC, rowid DESC")

	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*brawl.CrawlRecord
	for rows.Next() {
		record, err := scanCrawl(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// FindCrawlURLs returns the URLs of a crawl in visit order.
func (s *CrawlService) FindCrawlURLs(ctx context.Context, id string) ([]string, error) {
	if _, err := s.FindCrawlByID(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT url FROM crawl_urls WHERE crawl_id = ? ORDER BY position ASC", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}

	return urls, rows.Err()
}

// DeleteCrawl permanently removes a crawl.
func (s *CrawlService) DeleteCrawl(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM crawls WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return brawl.Errorf(brawl.ENOTFOUND, "crawl not found")
	}

	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCrawl(row scanner) (*brawl.CrawlRecord, error) {
	var record brawl.CrawlRecord
	var startedAt, finishedAt string
	var canceled int

	if err := row.Scan(&record.ID, &record.Seed, &startedAt, &finishedAt, &record.URLCount,
		&record.Fetched, &record.Failed, &canceled, &record.Digest); err != nil {
		return nil, err
	}

	var err error
	if record.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
		return nil, err
	}
	if record.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
		return nil, err
	}
	record.Canceled = canceled != 0

	return &record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
