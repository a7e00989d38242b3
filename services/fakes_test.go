package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/binay-das/cloudify/models"
	"github.com/binay-das/cloudify/repositories"
	"github.com/binay-das/cloudify/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeTxManager struct{}

func (fakeTxManager) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeFileRepo struct {
	rows  map[string]models.File
	order []string

	createErr     error
	getErr        error
	listErr       error
	updateErr     error
	deleteErr     error
	deleteTrashed int
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{rows: map[string]models.File{}}
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *fakeFileRepo) add(f models.File) models.File {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	r.rows[f.ID] = f
	r.order = append(r.order, f.ID)
	return f
}

func (r *fakeFileRepo) Create(_ context.Context, _ *gorm.DB, file *models.File) error {
	if r.createErr != nil {
		return r.createErr
	}
	*file = r.add(*file)
	return nil
}

func (r *fakeFileRepo) GetByIDAndUser(_ context.Context, _ *gorm.DB, fileID string, userID string) (models.File, error) {
	if r.getErr != nil {
		return models.File{}, r.getErr
	}
	f, ok := r.rows[fileID]
	if !ok || f.UserID != userID {
		return models.File{}, gorm.ErrRecordNotFound
	}
	return f, nil
}

func (r *fakeFileRepo) GetFolderByIDAndUser(ctx context.Context, tx *gorm.DB, folderID string, userID string) (models.File, error) {
	f, err := r.GetByIDAndUser(ctx, tx, folderID, userID)
	if err != nil {
		return models.File{}, err
	}
	if !f.IsFolder {
		return models.File{}, gorm.ErrRecordNotFound
	}
	return f, nil
}

func (r *fakeFileRepo) CountFoldersByParentAndName(_ context.Context, _ *gorm.DB, userID string, parentID *string, name string) (int64, error) {
	var n int64
	for _, f := range r.rows {
		if f.UserID == userID && f.IsFolder && f.Name == name && sameParent(f.ParentID, parentID) {
			n++
		}
	}
	return n, nil
}

func (r *fakeFileRepo) ListByParent(_ context.Context, _ *gorm.DB, userID string, parentID *string) ([]models.File, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.File, 0)
	for _, id := range r.order {
		f, ok := r.rows[id]
		if ok && f.UserID == userID && sameParent(f.ParentID, parentID) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) ListByFlag(_ context.Context, _ *gorm.DB, userID string, flag repositories.FileFlag) ([]models.File, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.File, 0)
	for _, id := range r.order {
		f, ok := r.rows[id]
		if !ok || f.UserID != userID {
			continue
		}
		if (flag == repositories.FlagStarred && f.IsFav && !f.IsTrash) || (flag == repositories.FlagTrashed && f.IsTrash) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) UpdateByIDAndUser(_ context.Context, _ *gorm.DB, fileID string, userID string, updates map[string]interface{}) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	f, ok := r.rows[fileID]
	if !ok || f.UserID != userID {
		return nil
	}
	for k, v := range updates {
		switch k {
		case "is_trash":
			f.IsTrash = v.(bool)
		case "is_fav":
			f.IsFav = v.(bool)
		}
	}
	f.UpdatedAt = time.Now()
	r.rows[fileID] = f
	return nil
}

func (r *fakeFileRepo) DeleteByIDAndUser(_ context.Context, _ *gorm.DB, fileID string, userID string) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	f, ok := r.rows[fileID]
	if !ok || f.UserID != userID {
		return 0, nil
	}
	delete(r.rows, fileID)
	return 1, nil
}

func (r *fakeFileRepo) ListTrashed(ctx context.Context, tx *gorm.DB, userID string) ([]models.File, error) {
	return r.ListByFlag(ctx, tx, userID, repositories.FlagTrashed)
}

func (r *fakeFileRepo) DeleteTrashed(_ context.Context, _ *gorm.DB, userID string) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	r.deleteTrashed++
	var n int64
	for id, f := range r.rows {
		if f.UserID == userID && f.IsTrash {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeFileRepo) ListTrashedBefore(_ context.Context, _ *gorm.DB, cutoff time.Time, limit int) ([]models.File, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.File, 0)
	for _, id := range r.order {
		f, ok := r.rows[id]
		if !ok || !f.IsTrash || !f.UpdatedAt.Before(cutoff) {
			continue
		}
		out = append(out, f)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	byID    map[string]models.User
	byEmail map[string]models.User

	countErr  error
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]models.User{}, byEmail: map[string]models.User{}}
}

func (r *fakeUserRepo) CountByEmail(_ context.Context, email string) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	if _, ok := r.byEmail[email]; ok {
		return 1, nil
	}
	return 0, nil
}

func (r *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, user *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = *user
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, _ *gorm.DB, email string) (models.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, userID string) (models.User, error) {
	u, ok := r.byID[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return u, nil
}

type fakeNewsletterRepo struct {
	emails    map[string]bool
	createErr error
}

func (r *fakeNewsletterRepo) CountByEmail(_ context.Context, email string) (int64, error) {
	if r.emails[email] {
		return 1, nil
	}
	return 0, nil
}

func (r *fakeNewsletterRepo) Create(_ context.Context, _ *gorm.DB, entry *models.NewsletterSubscription) error {
	if r.createErr != nil {
		return r.createErr
	}
	if r.emails == nil {
		r.emails = map[string]bool{}
	}
	entry.ID = uuid.NewString()
	r.emails[entry.Email] = true
	return nil
}

type fakeTokenBlocklist struct {
	revoked map[string]time.Duration
	err     error
}

func (b *fakeTokenBlocklist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if b.err != nil {
		return b.err
	}
	if b.revoked == nil {
		b.revoked = map[string]time.Duration{}
	}
	b.revoked[tokenID] = ttl
	return nil
}

func (b *fakeTokenBlocklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := b.revoked[tokenID]
	return ok, nil
}

// fakeObjectStore keeps objects by key and records calls. Safe for concurrent use.
type fakeObjectStore struct {
	mu sync.Mutex

	objects     map[string][]byte
	uploads     []storage.UploadInput
	finds       []string
	findFolders []string
	deletes     []string

	uploadErr  error
	findErr    error
	deleteErr  map[string]error
	failThumbs bool
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, deleteErr: map[string]error{}}
}

func (s *fakeObjectStore) Upload(_ context.Context, in storage.UploadInput) (storage.UploadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return storage.UploadResult{}, s.uploadErr
	}
	if s.failThumbs && len(s.uploads) > 0 {
		return storage.UploadResult{}, errors.New("thumbnail store down")
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return storage.UploadResult{}, err
	}
	key := storage.ObjectKey(in.Folder, in.FileName)
	s.objects[key] = data
	in.Body = nil
	s.uploads = append(s.uploads, in)
	return storage.UploadResult{
		ObjectID: key,
		Name:     in.FileName,
		FilePath: key,
		URL:      "https://cdn.test/" + key,
	}, nil
}

func (s *fakeObjectStore) FindByName(_ context.Context, folder, name string) ([]storage.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finds = append(s.finds, name)
	s.findFolders = append(s.findFolders, folder)
	if s.findErr != nil {
		return nil, s.findErr
	}
	key := storage.ObjectKey(folder, name)
	if data, ok := s.objects[key]; ok {
		return []storage.ObjectInfo{{ObjectID: key, Name: name, Size: int64(len(data))}}, nil
	}
	return nil, nil
}

func (s *fakeObjectStore) Delete(_ context.Context, objectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, objectID)
	if err := s.deleteErr[objectID]; err != nil {
		return err
	}
	delete(s.objects, objectID)
	return nil
}

func (s *fakeObjectStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads) + len(s.finds) + len(s.deletes)
}

func strPtr(s string) *string { return &s }
