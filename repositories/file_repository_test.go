package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/binay-das/cloudify/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func mustCreate(t *testing.T, repo *GormFileRepository, f models.File) models.File {
	t.Helper()
	if err := repo.Create(context.Background(), nil, &f); err != nil {
		t.Fatalf("create %q: %v", f.Name, err)
	}
	return f
}

func TestFileRepositoryListByParentReturnsOnlyImmediateChildren(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormFileRepository(db)
	ctx := context.Background()

	docs := mustCreate(t, repo, models.File{Name: "Docs", Path: "/folders/u1/a", Type: models.FolderType, UserID: "u1", IsFolder: true})
	mustCreate(t, repo, models.File{Name: "root.png", Path: "droply/u1/x-root.png", Type: "image/png", UserID: "u1"})
	inner := mustCreate(t, repo, models.File{Name: "Inner", Path: "/folders/u1/b", Type: models.FolderType, UserID: "u1", IsFolder: true, ParentID: strPtr(docs.ID)})
	mustCreate(t, repo, models.File{Name: "deep.txt", Path: "droply/u1/y-deep.txt", Type: "text/plain", UserID: "u1", ParentID: strPtr(inner.ID)})
	mustCreate(t, repo, models.File{Name: "other", Path: "/folders/u2/c", Type: models.FolderType, UserID: "u2", IsFolder: true})

	root, err := repo.ListByParent(ctx, nil, "u1", nil)
	if err != nil {
		t.Fatalf("list root: %v", err)
	}
	if len(root) != 2 || root[0].Name != "Docs" || root[1].Name != "root.png" {
		t.Fatalf("unexpected root listing: %+v", root)
	}

	children, err := repo.ListByParent(ctx, nil, "u1", strPtr(docs.ID))
	if err != nil {
		t.Fatalf("list docs: %v", err)
	}
	if len(children) != 1 || children[0].ID != inner.ID {
		t.Fatalf("expected only Inner under Docs, got %+v", children)
	}

	empty, err := repo.ListByParent(ctx, nil, "u2", strPtr(docs.ID))
	if err != nil {
		t.Fatalf("list foreign parent: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no leakage across users, got %+v", empty)
	}
}

func TestFileRepositoryCountFoldersByParentAndName(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormFileRepository(db)
	ctx := context.Background()

	docs := mustCreate(t, repo, models.File{Name: "Docs", Path: "/folders/u1/a", Type: models.FolderType, UserID: "u1", IsFolder: true})
	mustCreate(t, repo, models.File{Name: "Docs", Path: "droply/u1/z-Docs", Type: "text/plain", UserID: "u1"})

	count, err := repo.CountFoldersByParentAndName(ctx, nil, "u1", nil, "Docs")
	if err != nil || count != 1 {
		t.Fatalf("expected 1 root folder named Docs, got %d err=%v", count, err)
	}
	count, err = repo.CountFoldersByParentAndName(ctx, nil, "u1", strPtr(docs.ID), "Docs")
	if err != nil || count != 0 {
		t.Fatalf("expected 0 nested folders named Docs, got %d err=%v", count, err)
	}
	count, err = repo.CountFoldersByParentAndName(ctx, nil, "u2", nil, "Docs")
	if err != nil || count != 0 {
		t.Fatalf("expected other user to be isolated, got %d err=%v", count, err)
	}
}

func TestFileRepositoryGetFolderRejectsLeafAndForeignRows(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormFileRepository(db)
	ctx := context.Background()

	leaf := mustCreate(t, repo, models.File{Name: "a.png", Path: "droply/u1/a.png", Type: "image/png", UserID: "u1"})
	folder := mustCreate(t, repo, models.File{Name: "F", Path: "/folders/u1/f", Type: models.FolderType, UserID: "u1", IsFolder: true})

	if _, err := repo.GetFolderByIDAndUser(ctx, nil, leaf.ID, "u1"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for leaf, got %v", err)
	}
	if _, err := repo.GetFolderByIDAndUser(ctx, nil, folder.ID, "u2"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found for other user, got %v", err)
	}
	got, err := repo.GetFolderByIDAndUser(ctx, nil, folder.ID, "u1")
	if err != nil || got.ID != folder.ID {
		t.Fatalf("expected folder, got %+v err=%v", got, err)
	}
}

func TestFileRepositoryFlagsAndTrashBulkDelete(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormFileRepository(db)
	ctx := context.Background()

	a := mustCreate(t, repo, models.File{Name: "a", Path: "p/a", Type: "text/plain", UserID: "u1"})
	b := mustCreate(t, repo, models.File{Name: "b", Path: "p/b", Type: "text/plain", UserID: "u1"})
	mustCreate(t, repo, models.File{Name: "c", Path: "p/c", Type: "text/plain", UserID: "u1"})
	foreign := mustCreate(t, repo, models.File{Name: "d", Path: "p/d", Type: "text/plain", UserID: "u2"})

	if err := repo.UpdateByIDAndUser(ctx, nil, a.ID, "u1", map[string]interface{}{"is_trash": true}); err != nil {
		t.Fatalf("trash a: %v", err)
	}
	if err := repo.UpdateByIDAndUser(ctx, nil, b.ID, "u1", map[string]interface{}{"is_fav": true}); err != nil {
		t.Fatalf("star b: %v", err)
	}
	if err := repo.UpdateByIDAndUser(ctx, nil, foreign.ID, "u2", map[string]interface{}{"is_trash": true}); err != nil {
		t.Fatalf("trash foreign: %v", err)
	}

	starred, err := repo.ListByFlag(ctx, nil, "u1", FlagStarred)
	if err != nil || len(starred) != 1 || starred[0].ID != b.ID {
		t.Fatalf("unexpected starred list %+v err=%v", starred, err)
	}
	trashed, err := repo.ListTrashed(ctx, nil, "u1")
	if err != nil || len(trashed) != 1 || trashed[0].ID != a.ID {
		t.Fatalf("unexpected trashed list %+v err=%v", trashed, err)
	}

	deleted, err := repo.DeleteTrashed(ctx, nil, "u1")
	if err != nil || deleted != 1 {
		t.Fatalf("expected one trashed row deleted, got %d err=%v", deleted, err)
	}
	if _, err := repo.GetByIDAndUser(ctx, nil, foreign.ID, "u2"); err != nil {
		t.Fatalf("other user's trash must survive: %v", err)
	}

	deleted, err = repo.DeleteTrashed(ctx, nil, "u1")
	if err != nil || deleted != 0 {
		t.Fatalf("expected nothing left to delete, got %d err=%v", deleted, err)
	}
}

func TestFileRepositoryDeleteByIDIsScoped(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormFileRepository(db)
	ctx := context.Background()

	f := mustCreate(t, repo, models.File{Name: "a", Path: "p/a", Type: "text/plain", UserID: "u1"})

	rows, err := repo.DeleteByIDAndUser(ctx, nil, f.ID, "u2")
	if err != nil || rows != 0 {
		t.Fatalf("expected no rows deleted for other user, got %d err=%v", rows, err)
	}
	rows, err = repo.DeleteByIDAndUser(ctx, nil, f.ID, "u1")
	if err != nil || rows != 1 {
		t.Fatalf("expected owner delete, got %d err=%v", rows, err)
	}
}

func TestFileRepositoryDeletingFolderLeavesChildren(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormFileRepository(db)
	ctx := context.Background()

	folder := mustCreate(t, repo, models.File{Name: "F", Path: "/folders/u1/f", Type: models.FolderType, UserID: "u1", IsFolder: true})
	child := mustCreate(t, repo, models.File{Name: "c", Path: "p/c", Type: "text/plain", UserID: "u1", ParentID: strPtr(folder.ID)})

	if _, err := repo.DeleteByIDAndUser(ctx, nil, folder.ID, "u1"); err != nil {
		t.Fatalf("delete folder: %v", err)
	}
	got, err := repo.GetByIDAndUser(ctx, nil, child.ID, "u1")
	if err != nil {
		t.Fatalf("child should remain as an orphan: %v", err)
	}
	if got.ParentID == nil || *got.ParentID != folder.ID {
		t.Fatalf("orphan keeps its dangling parent id, got %+v", got.ParentID)
	}
}

func TestUserAndNewsletterRepositories(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewGormUserRepository(db)
	news := NewGormNewsletterRepository(db)

	u := models.User{Name: "Ann", Email: "ann@example.com", Password: "hash"}
	if err := users.Create(ctx, nil, &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == "" {
		t.Fatalf("expected generated id")
	}
	if n, err := users.CountByEmail(ctx, "ann@example.com"); err != nil || n != 1 {
		t.Fatalf("count: %d err=%v", n, err)
	}
	got, err := users.GetByEmail(ctx, nil, "ann@example.com")
	if err != nil || got.ID != u.ID {
		t.Fatalf("get by email: %+v err=%v", got, err)
	}
	if _, err := users.GetByID(ctx, nil, "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := news.Create(ctx, nil, &models.NewsletterSubscription{Email: "a@b.c"}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := news.Create(ctx, nil, &models.NewsletterSubscription{Email: "a@b.c"}); err == nil {
		t.Fatalf("expected unique violation")
	}
}

func TestMemoryTokenBlocklistExpires(t *testing.T) {
	m := NewMemoryTokenBlocklist()
	now := time.Unix(1000, 0)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	if err := m.Revoke(ctx, "jti", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := m.IsRevoked(ctx, "jti"); !revoked {
		t.Fatalf("expected token revoked")
	}
	now = now.Add(2 * time.Minute)
	if revoked, _ := m.IsRevoked(ctx, "jti"); revoked {
		t.Fatalf("expected revocation to lapse after ttl")
	}
	if err := m.Revoke(ctx, "expired", 0); err != nil {
		t.Fatalf("zero ttl revoke: %v", err)
	}
	if revoked, _ := m.IsRevoked(ctx, "expired"); revoked {
		t.Fatalf("zero ttl must not record")
	}
}

func TestFileRepositoryListTrashedBeforeSpansUsers(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormFileRepository(db)
	ctx := context.Background()

	old := mustCreate(t, repo, models.File{Name: "old", Path: "p/old", Type: "text/plain", UserID: "u1", IsTrash: true})
	other := mustCreate(t, repo, models.File{Name: "other", Path: "p/other", Type: "text/plain", UserID: "u2", IsTrash: true})
	mustCreate(t, repo, models.File{Name: "live", Path: "p/live", Type: "text/plain", UserID: "u1"})

	past := time.Now().Add(-48 * time.Hour)
	if err := db.Model(&models.File{}).Where("id IN ?", []string{old.ID, other.ID}).
		UpdateColumn("updated_at", past).Error; err != nil {
		t.Fatalf("backdate: %v", err)
	}
	mustCreate(t, repo, models.File{Name: "fresh", Path: "p/fresh", Type: "text/plain", UserID: "u1", IsTrash: true})

	got, err := repo.ListTrashedBefore(ctx, nil, time.Now().Add(-24*time.Hour), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected two expired rows across users, got %+v", got)
	}

	got, err = repo.ListTrashedBefore(ctx, nil, time.Now().Add(-24*time.Hour), 1)
	if err != nil || len(got) != 1 {
		t.Fatalf("expected limit to apply, got %d err=%v", len(got), err)
	}
}
