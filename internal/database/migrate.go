package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// ResetTables drops both tables and recreates them, then loads the demo
// fixtures. Destructive; intended for local development only.
func ResetTables(ctx context.Context, db *bun.DB) error {
	// Todos first: it carries the foreign key
	if _, err := db.NewDropTable().Model((*Todo)(nil)).IfExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to drop todos table: %w", err)
	}
	if _, err := db.NewDropTable().Model((*User)(nil)).IfExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to drop users table: %w", err)
	}

	if err := UpdateTables(ctx, db); err != nil {
		return err
	}

	return seed(ctx, db)
}

// UpdateTables creates any missing tables. Existing tables are left alone;
// this is additive only, not a migration system.
func UpdateTables(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	// Owner rows must outlive their todos: the FK cascades deletes so a
	// removed user takes all owned todos with it.
	if _, err := db.NewCreateTable().
		Model((*Todo)(nil)).
		IfNotExists().
		ForeignKey(`("owner_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to create todos table: %w", err)
	}

	return nil
}

// seed loads two demo users and their todos. The digests are bcrypt hashes
// of "secret" and "secret2".
func seed(ctx context.Context, db *bun.DB) error {
	users := []*User{
		{
			FName:          "John",
			LName:          "Doe",
			Email:          "johndoe@example.com",
			HashedPassword: "$2b$12$mV7rTpEAAk77POssNFkBfO.F0UvhU5Z2llYTbu3RcS8s8C3S2hNUC",
		},
		{
			FName:          "Alice",
			LName:          "Wonderson",
			Email:          "alice@example.com",
			HashedPassword: "$2b$12$Th16FzsG7bexKod7DpgKZORxIpoV1E8hu0Xh/jZOhM2hAJV03HKCu",
		},
	}

	if _, err := db.NewInsert().Model(&users).Exec(ctx); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	john, alice := users[0].ID, users[1].ID
	todos := []*Todo{
		{Text: "Bake french bread", OwnerID: john},
		{Text: "Water flower", OwnerID: john, Completed: true},
		{Text: "Play outdoor tennis", OwnerID: alice},
		{Text: "Buy groceries", OwnerID: alice},
		{Text: "Learn a new programming language", OwnerID: john},
		{Text: "Read a book about artificial intelligence", OwnerID: john, Completed: true},
		{Text: "Start a personal coding project", OwnerID: alice},
		{Text: "Take a course on data science", OwnerID: alice, Completed: true},
		{Text: "Write a blog post about a recent tech discovery", OwnerID: john},
		{Text: "Contribute to an open source project", OwnerID: alice},
		{Text: "Explore a new technology or framework", OwnerID: john},
		{Text: "Create a portfolio website", OwnerID: alice},
		{Text: "Attend a tech meetup or conference", OwnerID: john},
		{Text: "Build a mobile app", OwnerID: alice},
	}

	if _, err := db.NewInsert().Model(&todos).Exec(ctx); err != nil {
		return fmt.Errorf("failed to seed todos: %w", err)
	}

	return nil
}
