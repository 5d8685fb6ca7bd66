package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	catalogdb "meal-scheduler/internal/catalog/catalog_db"

	"github.com/google/uuid"
)

// Repository is a database-backed catalog of meal items and tags.
type Repository struct {
	queries *catalogdb.Queries
	db      *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{
		queries: catalogdb.New(d),
		db:      d,
	}
}

// FetchItems returns every item owned by userID with its tags attached.
// A user without items gets an empty, non-nil slice.
func (r *Repository) FetchItems(ctx context.Context, userID string) ([]Item, error) {
	dbItems, err := r.queries.ListMealItemsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal items: %w", err)
	}
	tagRows, err := r.queries.ListItemTagsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal item tags: %w", err)
	}

	tagsByItem := make(map[string][]string, len(dbItems))
	for _, row := range tagRows {
		tagsByItem[row.MealItemID] = append(tagsByItem[row.MealItemID], row.Name)
	}

	items := make([]Item, 0, len(dbItems))
	for _, dbItem := range dbItems {
		items = append(items, toItem(dbItem, tagsByItem[dbItem.ID]))
	}
	return items, nil
}

// Get retrieves a single item by id.
func (r *Repository) Get(ctx context.Context, id string) (*Item, error) {
	dbItem, err := r.queries.GetMealItem(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get meal item: %w", err)
	}
	tags, err := r.queries.ListTagNamesForItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags for item %s: %w", id, err)
	}
	item := toItem(dbItem, tags)
	return &item, nil
}

// Save creates an item (or replaces it when n.ID already exists) and links its tags.
func (r *Repository) Save(ctx context.Context, userID string, n NewItem) (*Item, error) {
	if err := n.validate(); err != nil {
		return nil, err
	}

	var saved Item
	err := r.inTx(ctx, func(q *catalogdb.Queries) error {
		item, err := saveItem(ctx, q, userID, n)
		if err != nil {
			return err
		}
		saved = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// Update replaces the editable fields and the tag set of an existing item.
func (r *Repository) Update(ctx context.Context, userID, id string, n NewItem) (*Item, error) {
	if err := n.validate(); err != nil {
		return nil, err
	}

	err := r.inTx(ctx, func(q *catalogdb.Queries) error {
		affected, err := q.UpdateMealItem(ctx, catalogdb.UpdateMealItemParams{
			Title:     strings.TrimSpace(n.Title),
			Notes:     n.Notes,
			Role:      string(n.Role),
			Effort:    int64(n.Effort),
			UpdatedAt: time.Now().UTC(),
			ID:        id,
		})
		if err != nil {
			return fmt.Errorf("failed to update meal item: %w", err)
		}
		if affected == 0 {
			return ErrItemNotFound
		}
		if err := q.DeleteMealItemTags(ctx, id); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		return linkTags(ctx, q, userID, id, n.Tags)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete removes an item. Saved schedules keep their (now dangling) references.
func (r *Repository) Delete(ctx context.Context, id string) error {
	affected, err := r.queries.DeleteMealItem(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete meal item: %w", err)
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	return nil
}

// Import stores all rows in one transaction; a single failure rolls back the batch.
func (r *Repository) Import(ctx context.Context, userID string, rows []ImportRow) ([]Item, error) {
	items := make([]Item, 0, len(rows))
	err := r.inTx(ctx, func(q *catalogdb.Queries) error {
		for i, row := range rows {
			n := row.ToNewItem()
			if err := n.validate(); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			item, err := saveItem(ctx, q, userID, n)
			if err != nil {
				return fmt.Errorf("row %d (%s): %w", i+1, row.Name, err)
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListTags returns the user's tags ordered by name.
func (r *Repository) ListTags(ctx context.Context, userID string) ([]Tag, error) {
	dbTags, err := r.queries.ListTagsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	tags := make([]Tag, 0, len(dbTags))
	for _, t := range dbTags {
		tags = append(tags, Tag{ID: t.ID, UserID: t.UserID, Name: t.Name})
	}
	return tags, nil
}

// EnsureTag returns the user's tag matching name case-insensitively, creating it if needed.
func (r *Repository) EnsureTag(ctx context.Context, userID, name string) (*Tag, error) {
	t, err := ensureTag(ctx, r.queries, userID, name)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) inTx(ctx context.Context, fn func(q *catalogdb.Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(r.queries.WithTx(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func saveItem(ctx context.Context, q *catalogdb.Queries, userID string, n NewItem) (Item, error) {
	id := n.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := time.Now().UTC()

	params := catalogdb.InsertMealItemParams{
		ID:        id,
		UserID:    userID,
		Title:     strings.TrimSpace(n.Title),
		Notes:     n.Notes,
		Role:      string(n.Role),
		Effort:    int64(n.Effort),
		CreatedAt: now,
		UpdatedAt: now,
	}
	affected, err := q.InsertMealItem(ctx, params)
	if err != nil {
		return Item{}, fmt.Errorf("failed to insert meal item: %w", err)
	}
	if affected == 0 {
		// id is taken by another user's item
		return Item{}, fmt.Errorf("item %s belongs to another user: %w", id, ErrItemNotFound)
	}
	if err := q.DeleteMealItemTags(ctx, id); err != nil {
		return Item{}, fmt.Errorf("failed to clear tags: %w", err)
	}
	if err := linkTags(ctx, q, userID, id, n.Tags); err != nil {
		return Item{}, err
	}

	dbItem, err := q.GetMealItem(ctx, id)
	if err != nil {
		return Item{}, fmt.Errorf("failed to reload meal item: %w", err)
	}
	tags, err := q.ListTagNamesForItem(ctx, id)
	if err != nil {
		return Item{}, fmt.Errorf("failed to list tags for item %s: %w", id, err)
	}
	return toItem(dbItem, tags), nil
}

func linkTags(ctx context.Context, q *catalogdb.Queries, userID, itemID string, names []string) error {
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		tag, err := ensureTag(ctx, q, userID, name)
		if err != nil {
			return err
		}
		if err := q.InsertMealItemTag(ctx, catalogdb.InsertMealItemTagParams{
			MealItemID: itemID,
			TagID:      tag.ID,
		}); err != nil {
			return fmt.Errorf("failed to link tag %q: %w", name, err)
		}
	}
	return nil
}

func ensureTag(ctx context.Context, q *catalogdb.Queries, userID, name string) (Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Tag{}, fmt.Errorf("tag name is required")
	}

	existing, err := q.GetTagByName(ctx, catalogdb.GetTagByNameParams{UserID: userID, Name: name})
	if err == nil {
		return Tag{ID: existing.ID, UserID: existing.UserID, Name: existing.Name}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Tag{}, fmt.Errorf("failed to look up tag %q: %w", name, err)
	}

	tag := Tag{ID: uuid.NewString(), UserID: userID, Name: name}
	if err := q.InsertTag(ctx, catalogdb.InsertTagParams{ID: tag.ID, UserID: userID, Name: name}); err != nil {
		return Tag{}, fmt.Errorf("failed to create tag %q: %w", name, err)
	}
	return tag, nil
}

func toItem(dbItem catalogdb.MealItem, tags []string) Item {
	if tags == nil {
		tags = []string{}
	}
	return Item{
		ID:        dbItem.ID,
		UserID:    dbItem.UserID,
		Title:     dbItem.Title,
		Notes:     dbItem.Notes,
		Role:      Role(dbItem.Role),
		Tags:      tags,
		Effort:    int(dbItem.Effort),
		CreatedAt: dbItem.CreatedAt,
		UpdatedAt: dbItem.UpdatedAt,
	}
}
