package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ixtiyorSaitov/e-commerce-admin/common/errors"
	"github.com/ixtiyorSaitov/e-commerce-admin/models"
	"github.com/ixtiyorSaitov/e-commerce-admin/services"
)

func newTestRedisClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: "localhost:0",
		Dialer: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return nil, errors.New("redis disabled in tests")
		},
		MaxRetries: -1,
	})
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Datas   json.RawMessage `json:"datas"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

// --- Products ---

type fakeProductService struct {
	lastQuery      services.ProductQuery
	lastReq        services.ProductRequest
	lastID         string
	populateCalled int
	err            error
}

func (f *fakeProductService) CreateProduct(_ context.Context, req services.ProductRequest) (*models.Product, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{ID: uuid.NewString(), Name: req.Name, Categories: req.Categories}, nil
}

func (f *fakeProductService) UpdateProduct(_ context.Context, id string, req services.ProductRequest) (*models.Product, error) {
	f.lastID, f.lastReq = id, req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{ID: id, Name: req.Name}, nil
}

func (f *fakeProductService) DeleteProduct(_ context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakeProductService) GetProduct(_ context.Context, id string) (*models.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Product{ID: id}, nil
}

func (f *fakeProductService) ListProducts(_ context.Context, q services.ProductQuery) ([]models.Product, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	return []models.Product{{ID: "p1", Name: "Lamp", Categories: []string{"c1"}, CreatedAt: time.Now()}}, nil
}

func (f *fakeProductService) PopulateProducts(_ context.Context, products []models.Product) ([]models.PopulatedProduct, error) {
	f.populateCalled++
	out := make([]models.PopulatedProduct, 0, len(products))
	for _, p := range products {
		out = append(out, models.PopulatedProduct{Product: p, Categories: []models.CategorySummary{{ID: "c1", Slug: "lighting"}}})
	}
	return out, nil
}

func newProductRouter(svc ProductServiceAPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewProductController(svc, NewCacheManager(newTestRedisClient(), time.Minute))
	r := gin.New()
	r.POST("/product/create-product", ctrl.CreateProduct)
	r.PUT("/product/edit-product/:id", ctrl.EditProduct)
	r.DELETE("/product/delete-product/:id", ctrl.DeleteProduct)
	r.GET("/product/get-product", ctrl.GetProducts)
	r.GET("/product/:id", ctrl.GetProductByID)
	return r
}

func TestGetProductsWithFilters(t *testing.T) {
	svc := &fakeProductService{}
	r := newProductRouter(svc)

	w, env := doJSON(t, r, http.MethodGet, "/product/get-product?category=lighting&slug=lamp", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Equal(t, services.ProductQuery{CategorySlug: "lighting", Slug: "lamp"}, svc.lastQuery)
	assert.Equal(t, 0, svc.populateCalled)

	var products []models.Product
	require.NoError(t, json.Unmarshal(env.Datas, &products))
	require.Len(t, products, 1)
	assert.Equal(t, []string{"c1"}, products[0].Categories)
}

func TestGetProductsPopulate(t *testing.T) {
	svc := &fakeProductService{}
	r := newProductRouter(svc)

	w, env := doJSON(t, r, http.MethodGet, "/product/get-product?populate=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.populateCalled)
	assert.Contains(t, string(env.Datas), `"slug":"lighting"`)

	w, env = doJSON(t, r, http.MethodGet, "/product/get-product?populate=maybe", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "populate")
}

func TestCreateProductPassesBodyThrough(t *testing.T) {
	svc := &fakeProductService{}
	r := newProductRouter(svc)
	body := `{"name":"Phone X","description":"d","price":100,"oldPrice":120,"categories":["c1"],"images":["a.png"],"benefits":["fast","cheap"],"isOriginal":true}`

	w, env := doJSON(t, r, http.MethodPost, "/product/create-product", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Phone X", svc.lastReq.Name)
	require.NotNil(t, svc.lastReq.Price)
	assert.Equal(t, 100.0, *svc.lastReq.Price)
	assert.True(t, svc.lastReq.IsOriginal)
}

func TestCreateProductErrors(t *testing.T) {
	r := newProductRouter(&fakeProductService{err: apperrors.BadRequest("categories must contain at least 1 item(s)")})

	w, env := doJSON(t, r, http.MethodPost, "/product/create-product", `{"name":"x","categories":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "categories must contain at least 1 item(s)", env.Error)

	w, env = doJSON(t, r, http.MethodPost, "/product/create-product", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "Invalid request body")

	r = newProductRouter(&fakeProductService{err: apperrors.Internal("Product created but linking it to its categories failed", errors.New("timeout"))})
	w, env = doJSON(t, r, http.MethodPost, "/product/create-product", `{"name":"x"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, env.Error, "timeout")
}

func TestEditAndDeleteProductValidateID(t *testing.T) {
	svc := &fakeProductService{}
	r := newProductRouter(svc)

	w, env := doJSON(t, r, http.MethodPut, "/product/edit-product/not-a-uuid", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid product ID format", env.Error)

	id := uuid.NewString()
	w, _ = doJSON(t, r, http.MethodPut, "/product/edit-product/"+id, `{"name":"Lamp"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, svc.lastID)

	w, env = doJSON(t, r, http.MethodDelete, "/product/delete-product/"+strings.ToUpper(id), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, svc.lastID, "IDs are canonicalised")
	assert.Equal(t, "Product deleted successfully", env.Message)

	svc.err = apperrors.NotFound("Product not found")
	w, env = doJSON(t, r, http.MethodDelete, "/product/delete-product/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", env.Error)
}

// --- Categories ---

type fakeCategoryService struct {
	deleteErr error
	created   services.CategoryRequest
}

func (f *fakeCategoryService) CreateCategory(_ context.Context, req services.CategoryRequest) (*models.Category, error) {
	f.created = req
	return &models.Category{ID: uuid.NewString(), Name: req.Name, Slug: "electronics", Products: []string{}}, nil
}

func (f *fakeCategoryService) UpdateCategory(_ context.Context, id string, req services.CategoryRequest) (*models.Category, error) {
	return &models.Category{ID: id, Name: req.Name}, nil
}

func (f *fakeCategoryService) DeleteCategory(_ context.Context, _ string) error { return f.deleteErr }

func (f *fakeCategoryService) ListCategories(_ context.Context) ([]models.CategorySummary, error) {
	return []models.CategorySummary{{ID: "c1", Name: "Electronics", ProductCount: 3}}, nil
}

func (f *fakeCategoryService) GetCategory(_ context.Context, id string) (*models.Category, error) {
	return &models.Category{ID: id}, nil
}

func newCategoryRouter(svc CategoryServiceAPI) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewCategoryController(svc, NewCacheManager(newTestRedisClient(), 0))
	r := gin.New()
	r.POST("/category/create-category", ctrl.CreateCategory)
	r.PUT("/category/edit-category/:id", ctrl.EditCategory)
	r.DELETE("/category/delete-category/:id", ctrl.DeleteCategory)
	r.GET("/category/get-all", ctrl.GetCategories)
	return r
}

func TestCategoryEndpoints(t *testing.T) {
	svc := &fakeCategoryService{}
	r := newCategoryRouter(svc)

	w, env := doJSON(t, r, http.MethodPost, "/category/create-category", `{"name":"Electronics","icon":"Cpu","description":"...","status":"active"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, string(env.Data), `"products":[]`)
	assert.Equal(t, models.CategoryStatusActive, svc.created.Status)

	w, env = doJSON(t, r, http.MethodGet, "/category/get-all", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Datas), `"productCount":3`)
	assert.NotContains(t, string(env.Datas), `"products"`)

	w, _ = doJSON(t, r, http.MethodPut, "/category/edit-category/"+uuid.NewString(), `{"name":"Gadgets"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	svc.deleteErr = apperrors.NotFound("Category not found")
	w, env = doJSON(t, r, http.MethodDelete, "/category/delete-category/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Category not found", env.Error)
}

// --- Promo codes ---

type fakePromocodeService struct{}

func (fakePromocodeService) CreatePromocode(_ context.Context, req services.PromocodeRequest) (*models.Promocode, error) {
	return &models.Promocode{Key: req.Key}, nil
}
func (fakePromocodeService) ListPromocodes(context.Context) ([]models.Promocode, error) { return nil, nil }
func (fakePromocodeService) DeletePromocode(context.Context, string) error           { return nil }
func (fakePromocodeService) Quote(_ context.Context, req services.QuoteRequest) (*models.PromocodeQuote, error) {
	if req.Key != "SUMMER" {
		return nil, apperrors.NotFound("Promocode not found")
	}
	return &models.PromocodeQuote{Key: req.Key, Discount: "10.00", Total: "90.00"}, nil
}

func TestPromocodeQuote(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctrl := NewPromocodeController(fakePromocodeService{})
	r := gin.New()
	r.POST("/promocode/quote", ctrl.Quote)

	w, env := doJSON(t, r, http.MethodPost, "/promocode/quote", `{"key":"SUMMER","orderTotal":100}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"key":"SUMMER","type":"","orderTotal":"","discount":"10.00","total":"90.00"}`, string(env.Data))

	w, _ = doJSON(t, r, http.MethodPost, "/promocode/quote", `{"key":"WINTER","orderTotal":100}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMeRequiresAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/me", Me)
	w, env := doJSON(t, r, http.MethodGet, "/admin/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", env.Error)
}

func TestNilCacheManagerNeverHits(t *testing.T) {
	var cm *CacheManager
	_, version, ok := cm.GetProductList(context.Background(), services.ProductQuery{})
	assert.False(t, ok)
	assert.Zero(t, version)
	cm.Invalidate(context.Background())
	cm.SetProductListAsync(1, services.ProductQuery{}, []byte("{}"))
	assert.Nil(t, NewCacheManager(nil, time.Minute))
}

func TestListKeyCoversEveryFilter(t *testing.T) {
	a := listKey(3, services.ProductQuery{CategorySlug: "x"})
	b := listKey(3, services.ProductQuery{Slug: "x"})
	c := listKey(3, services.ProductQuery{CategorySlug: "x", Populate: true})
	d := listKey(4, services.ProductQuery{CategorySlug: "x"})
	assert.Len(t, map[string]bool{a: true, b: true, c: true, d: true}, 4)
}

// memCacheStore is an in-memory stand-in for the Redis commands the cache uses.
type memCacheStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCacheStore() *memCacheStore { return &memCacheStore{data: map[string]string{}} }

func (m *memCacheStore) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memCacheStore) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = stringOf(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *memCacheStore) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = stringOf(value)
	return redis.NewBoolResult(true, nil)
}

func (m *memCacheStore) Incr(_ context.Context, key string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func (m *memCacheStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func stringOf(v any) string {
	switch v := v.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func TestCacheManagerKeepsBodyUnderVersionSeenBeforeRead(t *testing.T) {
	store := newMemCacheStore()
	cm := newCacheManager(store, time.Minute)
	ctx := context.Background()
	q := services.ProductQuery{CategorySlug: "lighting"}

	_, readVersion, ok := cm.GetProductList(ctx, q)
	require.False(t, ok)
	require.Positive(t, readVersion)

	// an edit commits and invalidates while the list is being rendered
	cm.Invalidate(ctx)
	cm.SetProductListAsync(readVersion, q, []byte("old"))
	assert.Eventually(t, func() bool { return store.has(listKey(readVersion, q)) }, time.Second, 5*time.Millisecond)

	_, current, ok := cm.GetProductList(ctx, q)
	assert.False(t, ok, "body rendered before the edit must not be served")
	assert.Equal(t, readVersion+1, current)

	cm.SetProductListAsync(current, q, []byte("new"))
	assert.Eventually(t, func() bool {
		body, _, hit := cm.GetProductList(ctx, q)
		return hit && string(body) == "new"
	}, time.Second, 5*time.Millisecond)
}

func TestListKeyEscapesSeparators(t *testing.T) {
	a := services.ProductQuery{CategorySlug: "a:s:b"}
	b := services.ProductQuery{CategorySlug: "a", Slug: "b:s:"}
	assert.NotEqual(t, listKey(1, a), listKey(1, b))

	store := newMemCacheStore()
	cm := newCacheManager(store, time.Minute)
	ctx := context.Background()
	_, v, _ := cm.GetProductList(ctx, a)
	cm.SetProductListAsync(v, a, []byte("a"))
	assert.Eventually(t, func() bool { return store.has(listKey(v, a)) }, time.Second, 5*time.Millisecond)

	_, _, hit := cm.GetProductList(ctx, b)
	assert.False(t, hit)
}

func TestGetProductsServesCachedBodyOnSecondRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeProductService{}
	ctrl := NewProductController(svc, newCacheManager(newMemCacheStore(), time.Minute))
	r := gin.New()
	r.GET("/product/get-product", ctrl.GetProducts)

	w, _ := doJSON(t, r, http.MethodGet, "/product/get-product?category=lighting", "")
	require.Equal(t, "MISS", w.Header().Get("X-Cache"))

	assert.Eventually(t, func() bool {
		w, env := doJSON(t, r, http.MethodGet, "/product/get-product?category=lighting", "")
		return w.Header().Get("X-Cache") == "HIT" && env.Success
	}, time.Second, 5*time.Millisecond)
}
