package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mediavault/mediavault/internal/models"
)

const fileColumns = `f.id, f.name, f.descriptor_id, f.location_id, f.file_type, f.mime_type, f.status, f.size, f.creation_time, f.change_time, f.import_time, cd.hash`

const fileJoin = `FROM files f JOIN content_descriptors cd ON cd.id = f.descriptor_id`

// FileRepository manages persistence for files and evaluates tag predicate
// queries against the file set.
type FileRepository struct {
	db *sqlx.DB
}

// NewFileRepository constructs a FileRepository.
func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create inserts a new file row and fills in its generated id.
func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	now := time.Now().UTC()
	if file.ImportTime.IsZero() {
		file.ImportTime = now
	}
	if file.CreationTime.IsZero() {
		file.CreationTime = now
	}
	if file.ChangeTime.IsZero() {
		file.ChangeTime = now
	}
	if file.Status == "" {
		file.Status = models.FileStatusImported
	}

	const query = `INSERT INTO files (name, descriptor_id, location_id, file_type, mime_type, status, size, creation_time, change_time, import_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	if err := r.db.GetContext(ctx, &file.ID, query,
		file.Name, file.DescriptorID, file.LocationID, file.FileType, file.MimeType,
		file.Status, file.Size, file.CreationTime, file.ChangeTime, file.ImportTime); err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

// FindByID fetches a file with its content hash.
func (r *FileRepository) FindByID(ctx context.Context, id int64) (*models.FileWithHash, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE f.id = $1`, fileColumns, fileJoin)
	var file models.FileWithHash
	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		return nil, err
	}
	return &file, nil
}

// FindByHash fetches a file by its content hash.
func (r *FileRepository) FindByHash(ctx context.Context, hash string) (*models.FileWithHash, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE cd.hash = $1`, fileColumns, fileJoin)
	var file models.FileWithHash
	if err := r.db.GetContext(ctx, &file, query, hash); err != nil {
		return nil, err
	}
	return &file, nil
}

// List returns all files ordered by the provided sort keys.
func (r *FileRepository) List(ctx context.Context, sortBy []models.SortKey) ([]models.FileWithHash, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY %s`, fileColumns, fileJoin, orderClause(sortBy))
	var files []models.FileWithHash
	if err := r.db.SelectContext(ctx, &files, query); err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// FindByTagPredicates returns files carrying every non-negated tag and none of
// the negated ones. Matching is conjunctive; sorting is a post-filter step.
func (r *FileRepository) FindByTagPredicates(ctx context.Context, predicates []models.TagPredicate, sortBy []models.SortKey) ([]models.FileWithHash, error) {
	var positive, negative []int64
	for _, p := range predicates {
		if p.Negate {
			negative = append(negative, p.TagID)
		} else {
			positive = append(positive, p.TagID)
		}
	}

	var conditions []string
	var args []interface{}

	if len(positive) > 0 {
		placeholders := make([]string, len(positive))
		for i, id := range positive {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, id)
		}
		conditions = append(conditions, fmt.Sprintf(
			`f.id IN (SELECT file_id FROM file_tags WHERE tag_id IN (%s) GROUP BY file_id HAVING COUNT(DISTINCT tag_id) = %d)`,
			strings.Join(placeholders, ","), len(positive)))
	}
	if len(negative) > 0 {
		placeholders := make([]string, len(negative))
		for i, id := range negative {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, id)
		}
		conditions = append(conditions, fmt.Sprintf(
			`NOT EXISTS (SELECT 1 FROM file_tags ft WHERE ft.file_id = f.id AND ft.tag_id IN (%s))`,
			strings.Join(placeholders, ",")))
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s %s%s ORDER BY %s`, fileColumns, fileJoin, clause, orderClause(sortBy))
	var files []models.FileWithHash
	if err := r.db.SelectContext(ctx, &files, query, args...); err != nil {
		return nil, fmt.Errorf("find files by tags: %w", err)
	}
	return files, nil
}

// UpdateName sets the display name and bumps the change time.
func (r *FileRepository) UpdateName(ctx context.Context, id int64, name string) error {
	const query = `UPDATE files SET name = $2, change_time = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, name, time.Now().UTC()); err != nil {
		return fmt.Errorf("update file name: %w", err)
	}
	return nil
}

// UpdateStatus moves a file through its lifecycle.
func (r *FileRepository) UpdateStatus(ctx context.Context, id int64, status models.FileStatus) error {
	const query = `UPDATE files SET status = $2, change_time = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update file status: %w", err)
	}
	return nil
}

// orderClause renders an allow-listed ORDER BY. Unknown fields fall back to
// import time so caller input never reaches the SQL text.
func orderClause(sortBy []models.SortKey) string {
	allowed := map[string]string{
		"id":            "f.id",
		"name":          "f.name",
		"size":          "f.size",
		"import_time":   "f.import_time",
		"creation_time": "f.creation_time",
		"change_time":   "f.change_time",
	}

	var parts []string
	for _, key := range sortBy {
		column, ok := allowed[strings.ToLower(key.Field)]
		if !ok {
			continue
		}
		direction := "DESC"
		if key.Ascending {
			direction = "ASC"
		}
		parts = append(parts, column+" "+direction)
	}
	if len(parts) == 0 {
		return "f.import_time DESC"
	}
	return strings.Join(parts, ", ")
}
