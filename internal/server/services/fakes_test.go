package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jbarakanov/videohost/internal/common"
	"github.com/jbarakanov/videohost/internal/dbx"
	"github.com/jbarakanov/videohost/internal/logging"
	"github.com/jbarakanov/videohost/internal/server/cache"
	"github.com/jbarakanov/videohost/internal/server/config"
	"github.com/jbarakanov/videohost/internal/server/models"
	"github.com/jbarakanov/videohost/internal/server/notify"
	usersrepo "github.com/jbarakanov/videohost/internal/server/repositories/users"
	videosrepo "github.com/jbarakanov/videohost/internal/server/repositories/videos"
)

// --- in-memory repositories ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.User
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[int64]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// stand-in for the unique constraints
	for _, other := range f.byID {
		if other.Email == u.Email {
			return nil, common.ErrEmailTaken
		}
		if other.Username == u.Username {
			return nil, common.ErrUsernameTaken
		}
	}

	f.nextID++
	u.ID = f.nextID
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	cur, ok := f.byID[u.ID]
	if !ok {
		return nil, common.ErrNotFound
	}
	for _, other := range f.byID {
		if other.ID == u.ID {
			continue
		}
		if other.Email == u.Email {
			return nil, common.ErrEmailTaken
		}
		if other.Username == u.Username {
			return nil, common.ErrUsernameTaken
		}
		if u.PhoneNumber != "" && other.PhoneNumber == u.PhoneNumber {
			return nil, common.ErrPhoneTaken
		}
	}
	cur.Email = u.Email
	cur.Username = u.Username
	cur.PhoneNumber = u.PhoneNumber
	u.PasswordHash = cur.PasswordHash
	u.IsActive = cur.IsActive
	return u, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.byID {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) List(ctx context.Context, offset, limit int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []*models.User
	for _, u := range f.byID {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

type fakeVideosRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.Video

	createErr error
}

func newFakeVideosRepo() *fakeVideosRepo {
	return &fakeVideosRepo{byID: map[int64]*models.Video{}}
}

func (f *fakeVideosRepo) Create(ctx context.Context, v *models.Video) (*models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}

	f.nextID++
	v.ID = f.nextID
	cp := *v
	f.byID[v.ID] = &cp
	return v, nil
}

func (f *fakeVideosRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.byID[id]; !ok {
		return common.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeVideosRepo) GetByID(ctx context.Context, id int64) (*models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeVideosRepo) List(ctx context.Context, offset, limit int) ([]*models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []*models.Video
	for _, v := range f.byID {
		cp := *v
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (f *fakeVideosRepo) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*models.Video
	for _, v := range f.byID {
		if v.OwnerID == ownerID {
			cp := *v
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// --- manager / blob / dispatcher / cache fakes ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	v *fakeVideosRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), v: newFakeVideosRepo()}
}

func (m *fakeRepoManager) Conn() *sql.DB                              { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository    { return m.u }
func (m *fakeRepoManager) Videos(db dbx.DBTX) videosrepo.Repository  { return m.v }
func (m *fakeRepoManager) RunMigrations(ctx context.Context) error   { return nil }

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	putErr error
	delErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) Put(ctx context.Context, ref string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.putErr != nil {
		return f.putErr
	}
	f.objects[ref] = data
	return nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.delErr != nil {
		return f.delErr
	}
	delete(f.objects, ref)
	return nil
}

func (f *fakeBlobStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, msg notify.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
}

func (f *fakeDispatcher) messages() []notify.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notify.Message(nil), f.sent...)
}

// failingCache simulates a cache outage on every call.
type failingCache struct {
	gets int
	puts int
}

func (c *failingCache) GetUserPage(ctx context.Context, key string) ([]*models.User, bool, error) {
	c.gets++
	return nil, false, context.DeadlineExceeded
}

func (c *failingCache) PutUserPage(ctx context.Context, key string, page []*models.User, ttl time.Duration) error {
	c.puts++
	return context.DeadlineExceeded
}

// countingCache wraps the in-memory cache and counts backing-store misses.
type countingCache struct {
	*cache.MemoryUserPages
	hits   int
	misses int
}

func newCountingCache() *countingCache {
	return &countingCache{MemoryUserPages: cache.NewMemoryUserPages()}
}

func (c *countingCache) GetUserPage(ctx context.Context, key string) ([]*models.User, bool, error) {
	page, ok, err := c.MemoryUserPages.GetUserPage(ctx, key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return page, ok, err
}

// --- helpers ---

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:             "k",
		TokenValidityDuration: time.Hour,
		UserListCacheTTL:      120 * time.Second,
	}
}

func newTestLogger() logging.Logger {
	return logging.NewJSONLogger()
}

func newUserService(t *testing.T, rm *fakeRepoManager, pages cache.UserPages, blobs *fakeBlobStore, d *fakeDispatcher) *UserService {
	t.Helper()
	if pages == nil {
		pages = cache.NewMemoryUserPages()
	}
	if blobs == nil {
		blobs = newFakeBlobStore()
	}
	if d == nil {
		d = &fakeDispatcher{}
	}
	return NewUserService(nil, rm, pages, blobs, d, newTestLogger(), testConfig())
}

func newVideoService(t *testing.T, rm *fakeRepoManager, blobs *fakeBlobStore) *VideoService {
	t.Helper()
	if blobs == nil {
		blobs = newFakeBlobStore()
	}
	return NewVideoService(nil, rm, blobs, newTestLogger())
}

// newTxDB returns a sqlmock DB for services that open transactions.
func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}
