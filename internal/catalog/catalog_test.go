package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/bankimport/internal/model"
)

type fakeSource struct {
	mu            sync.Mutex
	categories    []model.Category
	accounts      []model.Account
	categoryLoads int
	accountLoads  int
	err           error

	// When set, the next category load signals loading after reading its
	// snapshot and waits for release before returning it.
	loading chan struct{}
	release chan struct{}
}

func (f *fakeSource) Categories(context.Context) ([]model.Category, error) {
	f.mu.Lock()
	f.categoryLoads++
	err := f.err
	cats := append([]model.Category(nil), f.categories...)
	loading, release := f.loading, f.release
	f.loading, f.release = nil, nil
	f.mu.Unlock()

	if release != nil {
		close(loading)
		<-release
	}
	if err != nil {
		return nil, err
	}
	return cats, nil
}

func (f *fakeSource) AddCategory(_ context.Context, c model.Category) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = int64(len(f.categories) + 1)
	f.categories = append(f.categories, c)
	return c.ID, nil
}

func (f *fakeSource) Accounts(context.Context) ([]model.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accountLoads++
	return append([]model.Account(nil), f.accounts...), nil
}

func newTestCatalog(t *testing.T, src Source) *Catalog {
	t.Helper()
	c, err := New(src)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestCategories_CachedAfterFirstLoad(t *testing.T) {
	src := &fakeSource{categories: []model.Category{{ID: 1, Name: "Uncategorized"}, {ID: 2, Name: "Income"}}}
	c := newTestCatalog(t, src)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cats, err := c.Categories(ctx)
		require.NoError(t, err)
		assert.Len(t, cats, 2)
	}
	assert.Equal(t, 1, src.categoryLoads)
}

func TestInvalidateCategories(t *testing.T) {
	src := &fakeSource{categories: []model.Category{{ID: 1, Name: "Uncategorized"}}}
	c := newTestCatalog(t, src)
	ctx := context.Background()

	_, err := c.Categories(ctx)
	require.NoError(t, err)

	src.categories = append(src.categories, model.Category{ID: 2, Name: "Income"})
	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1, "stale until invalidated")

	c.InvalidateCategories()
	cats, err = c.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 2)
	assert.Equal(t, 2, src.categoryLoads)
}

func TestAddCategory_Invalidates(t *testing.T) {
	src := &fakeSource{categories: []model.Category{{ID: 1, Name: "Uncategorized"}}}
	c := newTestCatalog(t, src)
	ctx := context.Background()

	_, err := c.Categories(ctx)
	require.NoError(t, err)

	id, err := c.AddCategory(ctx, model.Category{Name: "Pets"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)

	cat, err := c.CategoryByName(ctx, "Pets")
	require.NoError(t, err)
	assert.Equal(t, int64(2), cat.ID)
}

func TestAddCategory_DuringLoadIsNotLost(t *testing.T) {
	loading, release := make(chan struct{}), make(chan struct{})
	src := &fakeSource{
		categories: []model.Category{{ID: 1, Name: "Uncategorized"}},
		loading:    loading,
		release:    release,
	}
	c := newTestCatalog(t, src)
	ctx := context.Background()

	stale := make(chan []model.Category, 1)
	go func() {
		cats, err := c.Categories(ctx)
		assert.NoError(t, err)
		stale <- cats
	}()

	<-loading
	_, err := c.AddCategory(ctx, model.Category{Name: "Pets"})
	require.NoError(t, err)
	close(release)
	assert.Len(t, <-stale, 1, "load read its listing before the write")

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 2)

	_, err = c.CategoryByName(ctx, "Pets")
	assert.NoError(t, err)
}

func TestCategoryByName_Unknown(t *testing.T) {
	c := newTestCatalog(t, &fakeSource{categories: []model.Category{{ID: 1, Name: "Income"}}})
	_, err := c.CategoryByName(context.Background(), "income")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCategories_LoadErrorNotCached(t *testing.T) {
	src := &fakeSource{err: errors.New("db down")}
	c := newTestCatalog(t, src)
	ctx := context.Background()

	_, err := c.Categories(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")

	src.err = nil
	src.categories = []model.Category{{ID: 1, Name: "Income"}}
	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestCategories_ReturnsCopy(t *testing.T) {
	c := newTestCatalog(t, &fakeSource{categories: []model.Category{{ID: 1, Name: "Income"}}})
	ctx := context.Background()

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	cats[0].Name = "mutated"

	again, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Income", again[0].Name)
}

func TestAccounts_CachedAndInvalidated(t *testing.T) {
	src := &fakeSource{accounts: []model.Account{{ID: 1, Name: "Primary Checking", BankName: "Bank Of America"}}}
	c := newTestCatalog(t, src)
	ctx := context.Background()

	_, err := c.Accounts(ctx)
	require.NoError(t, err)
	_, err = c.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.accountLoads)

	c.InvalidateAccounts()
	accts, err := c.Accounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bank Of America", accts[0].BankName)
	assert.Equal(t, 2, src.accountLoads)
}

func TestCategories_Concurrent(t *testing.T) {
	src := &fakeSource{categories: []model.Category{{ID: 1, Name: "Income"}}}
	c := newTestCatalog(t, src)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cats, err := c.Categories(context.Background())
			assert.NoError(t, err)
			assert.Len(t, cats, 1)
		}()
	}
	wg.Wait()
}
