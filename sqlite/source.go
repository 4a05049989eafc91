package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/docdex/docdex"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ docdex.SourceService = (*SourceService)(nil)

// SourceService implements docdex.SourceService using SQLite.
type SourceService struct {
	db *DB
}

// NewSourceService creates a new SourceService.
func NewSourceService(db *DB) *SourceService {
	return &SourceService{db: db}
}

// CreateSource creates a new source. Names are unique; a duplicate name
// returns ECONFLICT.
func (s *SourceService) CreateSource(ctx context.Context, source *docdex.Source) error {
	if err := source.Validate(); err != nil {
		return err
	}
	if _, err := source.Policy.Filter(); err != nil {
		return err
	}

	source.ID = uuid.New().String()
	source.CreatedAt = time.Now().UTC()
	source.UpdatedAt = source.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (id, name, kind, locator, max_depth, max_pages, include, exclude, rate_per_host, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, source.ID, source.Name, string(source.Kind), source.Locator,
		source.Policy.MaxDepth, source.Policy.MaxPages,
		source.Policy.Include, source.Policy.Exclude, source.Policy.RatePerHost,
		source.CreatedAt.Format(time.RFC3339), source.UpdatedAt.Format(time.RFC3339))

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return docdex.Errorf(docdex.ECONFLICT, "source name %q already exists", source.Name)
	}
	return err
}

// FindSourceByID retrieves a source by ID.
func (s *SourceService) FindSourceByID(ctx context.Context, id string) (*docdex.Source, error) {
	return s.findOne(ctx, "id = ?", id)
}

// FindSourceByName retrieves a source by its unique name.
func (s *SourceService) FindSourceByName(ctx context.Context, name string) (*docdex.Source, error) {
	return s.findOne(ctx, "name = ?", name)
}

func (s *SourceService) findOne(ctx context.Context, where string, arg any) (*docdex.Source, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, kind, locator, max_depth, max_pages, include, exclude, rate_per_host, created_at, updated_at
		FROM sources
		WHERE `+where, arg)

	source, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, docdex.Errorf(docdex.ENOTFOUND, "source not found")
	}
	if err != nil {
		return nil, err
	}
	return source, nil
}

// FindSources retrieves sources matching the filter, ordered by name.
func (s *SourceService) FindSources(ctx context.Context, filter docdex.SourceFilter) ([]*docdex.Source, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, name, kind, locator, max_depth, max_pages, include, exclude, rate_per_host, created_at, updated_at FROM sources WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Name != nil {
		query.WriteString(" AND name = ?")
		args = append(args, *filter.Name)
	}

	query.WriteString(" ORDER BY name ASC")

	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*docdex.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}

// UpdateSource updates an existing source.
func (s *SourceService) UpdateSource(ctx context.Context, id string, upd docdex.SourceUpdate) (*docdex.Source, error) {
	source, err := s.FindSourceByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		source.Name = *upd.Name
	}
	if upd.Locator != nil {
		source.Locator = *upd.Locator
	}
	if upd.Policy != nil {
		source.Policy = *upd.Policy
	}
	if err := source.Validate(); err != nil {
		return nil, err
	}
	if _, err := source.Policy.Filter(); err != nil {
		return nil, err
	}
	source.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		UPDATE sources
		SET name = ?, locator = ?, max_depth = ?, max_pages = ?, include = ?, exclude = ?, rate_per_host = ?, updated_at = ?
		WHERE id = ?
	`, source.Name, source.Locator,
		source.Policy.MaxDepth, source.Policy.MaxPages,
		source.Policy.Include, source.Policy.Exclude, source.Policy.RatePerHost,
		source.UpdatedAt.Format(time.RFC3339), id)

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return nil, docdex.Errorf(docdex.ECONFLICT, "source name %q already exists", source.Name)
	}
	if err != nil {
		return nil, err
	}
	return source, nil
}

// DeleteSource permanently removes a source.
func (s *SourceService) DeleteSource(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sources WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return docdex.Errorf(docdex.ENOTFOUND, "source not found")
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanSource.
type scanner interface {
	Scan(dest ...any) error
}

func scanSource(row scanner) (*docdex.Source, error) {
	var source docdex.Source
	var kind, createdAt, updatedAt string

	err := row.Scan(&source.ID, &source.Name, &kind, &source.Locator,
		&source.Policy.MaxDepth, &source.Policy.MaxPages,
		&source.Policy.Include, &source.Policy.Exclude, &source.Policy.RatePerHost,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	source.Kind = docdex.SourceKind(kind)
	if source.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if source.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}
	return &source, nil
}
