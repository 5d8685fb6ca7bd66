package app

import (
	"context"
	"fmt"
	"io"
	"log"

	"meal-scheduler/internal/catalog"
	"meal-scheduler/internal/ghost"
)

// CatalogImporter stores a batch of parsed rows atomically.
type CatalogImporter interface {
	Import(ctx context.Context, userID string, rows []catalog.ImportRow) ([]catalog.Item, error)
}

// ItemSaver stores one item.
type ItemSaver interface {
	Save(ctx context.Context, userID string, n catalog.NewItem) (*catalog.Item, error)
}

// ImportCSV parses an item spreadsheet and stores every row, or none.
func ImportCSV(ctx context.Context, importer CatalogImporter, userID string, r io.Reader) ([]catalog.Item, error) {
	rows, err := catalog.ParseCSV(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no items found in csv")
	}

	items, err := importer.Import(ctx, userID, rows)
	if err != nil {
		return nil, fmt.Errorf("failed to import items: %w", err)
	}
	return items, nil
}

// SyncFromGhost mirrors posts tagged main or side into the user's catalog.
// A post that fails to save is logged and skipped.
func SyncFromGhost(ctx context.Context, client ghost.Client, saver ItemSaver, userID string) (int, error) {
	synced := 0
	for _, role := range []catalog.Role{catalog.RoleMain, catalog.RoleSide} {
		posts, err := client.FetchTaggedPosts(ctx, string(role))
		if err != nil {
			return synced, fmt.Errorf("failed to fetch %s posts from ghost: %w", role, err)
		}
		log.Printf("Fetched %d %s posts from Ghost.", len(posts), role)

		for _, n := range ghost.ItemsFromPosts(posts, userID, role) {
			if _, err := saver.Save(ctx, userID, n); err != nil {
				log.Printf("Failed to save '%s': %v", n.Title, err)
				continue
			}
			synced++
		}
	}
	return synced, nil
}
