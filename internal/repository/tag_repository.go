package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mediavault/mediavault/internal/models"
)

const tagColumns = `t.id, t.name, t.namespace_id, n.name AS namespace`

const tagJoin = `FROM tags t LEFT JOIN namespaces n ON n.id = t.namespace_id`

// TagRepository manages persistence for namespaces, tags and file links.
type TagRepository struct {
	db *sqlx.DB
}

// NewTagRepository constructs a TagRepository.
func NewTagRepository(db *sqlx.DB) *TagRepository {
	return &TagRepository{db: db}
}

// FindNamespace fetches a namespace by its unique name.
func (r *TagRepository) FindNamespace(ctx context.Context, name string) (*models.Namespace, error) {
	const query = `SELECT id, name FROM namespaces WHERE name = $1`
	var ns models.Namespace
	if err := r.db.GetContext(ctx, &ns, query, name); err != nil {
		return nil, err
	}
	return &ns, nil
}

// GetOrCreateNamespace resolves a namespace, creating it when absent. The
// unique index on name makes concurrent calls converge to one row.
func (r *TagRepository) GetOrCreateNamespace(ctx context.Context, name string) (*models.Namespace, error) {
	const insert = `INSERT INTO namespaces (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING
		RETURNING id, name`
	var ns models.Namespace
	err := r.db.GetContext(ctx, &ns, insert, name)
	if err == nil {
		return &ns, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("create namespace: %w", err)
	}
	return r.FindNamespace(ctx, name)
}

// ListNamespacesByNames returns the namespaces whose names are in the list.
func (r *TagRepository) ListNamespacesByNames(ctx context.Context, names []string) ([]models.Namespace, error) {
	if len(names) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, name FROM namespaces WHERE name IN (?)`, names)
	if err != nil {
		return nil, fmt.Errorf("build namespace query: %w", err)
	}
	var namespaces []models.Namespace
	if err := r.db.SelectContext(ctx, &namespaces, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list namespaces: %w", err)
	}
	return namespaces, nil
}

// BulkInsertNamespaces inserts the missing namespaces in one statement.
// Conflicts with concurrent inserts are ignored; callers refetch afterwards.
func (r *TagRepository) BulkInsertNamespaces(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	placeholders := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, name := range names {
		placeholders[i] = fmt.Sprintf("($%d)", i+1)
		args[i] = name
	}
	query := fmt.Sprintf(`INSERT INTO namespaces (name) VALUES %s ON CONFLICT (name) DO NOTHING`,
		strings.Join(placeholders, ","))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bulk insert namespaces: %w", err)
	}
	return nil
}

// FindTag fetches a tag by its identity key (namespace id or none, name).
func (r *TagRepository) FindTag(ctx context.Context, namespaceID *int64, name string) (*models.Tag, error) {
	var tag models.Tag
	if namespaceID == nil {
		query := fmt.Sprintf(`SELECT %s %s WHERE t.namespace_id IS NULL AND t.name = $1`, tagColumns, tagJoin)
		if err := r.db.GetContext(ctx, &tag, query, name); err != nil {
			return nil, err
		}
		return &tag, nil
	}
	query := fmt.Sprintf(`SELECT %s %s WHERE t.namespace_id = $1 AND t.name = $2`, tagColumns, tagJoin)
	if err := r.db.GetContext(ctx, &tag, query, *namespaceID, name); err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetOrCreateTag resolves a tag, creating it when absent. The unique index on
// (coalesced namespace id, name) closes the concurrent check-then-insert race.
func (r *TagRepository) GetOrCreateTag(ctx context.Context, namespaceID *int64, name string) (*models.Tag, error) {
	const insert = `INSERT INTO tags (name, namespace_id) VALUES ($1, $2)
		ON CONFLICT (name, COALESCE(namespace_id, 0)) DO NOTHING
		RETURNING id`
	var id int64
	err := r.db.GetContext(ctx, &id, insert, name, namespaceID)
	if err == nil {
		return r.findTagByID(ctx, id)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return r.FindTag(ctx, namespaceID, name)
}

func (r *TagRepository) findTagByID(ctx context.Context, id int64) (*models.Tag, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE t.id = $1`, tagColumns, tagJoin)
	var tag models.Tag
	if err := r.db.GetContext(ctx, &tag, query, id); err != nil {
		return nil, err
	}
	return &tag, nil
}

// ListTagsByPairs returns the tags whose (namespace, name) identity is in the
// list. Pairs referencing unknown namespaces simply produce no row.
func (r *TagRepository) ListTagsByPairs(ctx context.Context, pairs []models.TagPair) ([]models.Tag, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	var conditions []string
	var args []interface{}
	for _, pair := range pairs {
		if pair.Namespace == nil {
			conditions = append(conditions, fmt.Sprintf("(t.namespace_id IS NULL AND t.name = $%d)", len(args)+1))
			args = append(args, pair.Name)
		} else {
			conditions = append(conditions, fmt.Sprintf("(n.name = $%d AND t.name = $%d)", len(args)+1, len(args)+2))
			args = append(args, *pair.Namespace, pair.Name)
		}
	}
	query := fmt.Sprintf(`SELECT %s %s WHERE %s`, tagColumns, tagJoin, strings.Join(conditions, " OR "))
	var tags []models.Tag
	if err := r.db.SelectContext(ctx, &tags, query, args...); err != nil {
		return nil, fmt.Errorf("list tags by pairs: %w", err)
	}
	return tags, nil
}

// BulkInsertTags inserts the missing tags in one statement. The namespace id
// is resolved by the caller beforehand so no tag ever precedes its namespace.
func (r *TagRepository) BulkInsertTags(ctx context.Context, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	placeholders := make([]string, len(tags))
	args := make([]interface{}, 0, len(tags)*2)
	for i, tag := range tags {
		placeholders[i] = fmt.Sprintf("($%d, $%d)", len(args)+1, len(args)+2)
		args = append(args, tag.Name, tag.NamespaceID)
	}
	query := fmt.Sprintf(`INSERT INTO tags (name, namespace_id) VALUES %s ON CONFLICT (name, COALESCE(namespace_id, 0)) DO NOTHING`,
		strings.Join(placeholders, ","))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("bulk insert tags: %w", err)
	}
	return nil
}

// ListAll returns every tag with its namespace.
func (r *TagRepository) ListAll(ctx context.Context) ([]models.Tag, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY n.name NULLS FIRST, t.name`, tagColumns, tagJoin)
	var tags []models.Tag
	if err := r.db.SelectContext(ctx, &tags, query); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// ListForFile returns the tags linked to a file.
func (r *TagRepository) ListForFile(ctx context.Context, fileID int64) ([]models.Tag, error) {
	query := fmt.Sprintf(`SELECT %s %s
		JOIN file_tags ft ON ft.tag_id = t.id
		WHERE ft.file_id = $1
		ORDER BY n.name NULLS FIRST, t.name`, tagColumns, tagJoin)
	var tags []models.Tag
	if err := r.db.SelectContext(ctx, &tags, query, fileID); err != nil {
		return nil, fmt.Errorf("list tags for file: %w", err)
	}
	return tags, nil
}

// ListForHashes returns the distinct tags linked to any file whose content
// hash is in the list.
func (r *TagRepository) ListForHashes(ctx context.Context, hashes []string) ([]models.Tag, error) {
	if len(hashes) == 0 {
		return nil, nil
	}
	base := fmt.Sprintf(`SELECT DISTINCT %s %s
		JOIN file_tags ft ON ft.tag_id = t.id
		JOIN files f ON f.id = ft.file_id
		JOIN content_descriptors cd ON cd.id = f.descriptor_id
		WHERE cd.hash IN (?)`, tagColumns, tagJoin)
	query, args, err := sqlx.In(base, hashes)
	if err != nil {
		return nil, fmt.Errorf("build tags-for-hashes query: %w", err)
	}
	var tags []models.Tag
	if err := r.db.SelectContext(ctx, &tags, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list tags for hashes: %w", err)
	}
	return tags, nil
}

// AddFileTags links tags to a file, ignoring links that already exist.
func (r *TagRepository) AddFileTags(ctx context.Context, fileID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	placeholders := make([]string, len(tagIDs))
	args := make([]interface{}, 0, len(tagIDs)+1)
	args = append(args, fileID)
	for i, id := range tagIDs {
		placeholders[i] = fmt.Sprintf("($1, $%d)", len(args)+1)
		args = append(args, id)
	}
	query := fmt.Sprintf(`INSERT INTO file_tags (file_id, tag_id) VALUES %s ON CONFLICT DO NOTHING`,
		strings.Join(placeholders, ","))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add file tags: %w", err)
	}
	return nil
}

// RemoveFileTags unlinks tags from a file.
func (r *TagRepository) RemoveFileTags(ctx context.Context, fileID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM file_tags WHERE file_id = ? AND tag_id IN (?)`, fileID, tagIDs)
	if err != nil {
		return fmt.Errorf("build remove tags query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("remove file tags: %w", err)
	}
	return nil
}
