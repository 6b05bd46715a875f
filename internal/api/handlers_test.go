package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tastebook/backend/internal/api"
	"github.com/tastebook/backend/internal/models"
	"github.com/tastebook/backend/internal/router"
	"github.com/tastebook/backend/internal/service"
	"github.com/tastebook/backend/internal/testhelpers"
)

type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]uuid.UUID
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: make(map[string]uuid.UUID)}
}

func (s *memoryTokenStore) SaveLoginToken(_ context.Context, tokenHash string, userID uuid.UUID, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = userID
	return nil
}

func (s *memoryTokenStore) ConsumeLoginToken(_ context.Context, tokenHash string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.tokens[tokenHash]
	if !ok {
		return uuid.Nil, service.ErrInvalidToken
	}
	delete(s.tokens, tokenHash)
	return userID, nil
}

type captureEmailSender struct {
	to   string
	link string
}

func (s *captureEmailSender) SendMagicLinkEmail(to, link string) error {
	s.to = to
	s.link = link
	return nil
}

type testServer struct {
	db     *gorm.DB
	router *gin.Engine
	auth   *service.AuthService
	sender *captureEmailSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.NewTestDB(t)
	sender := &captureEmailSender{}
	auth := service.NewAuthService(db, newMemoryTokenStore(), sender, "test-secret", "http://localhost:8080")

	handlers := router.Handlers{
		// nil limiter: throttling is off in tests
		Auth:    api.NewAuthHandler(auth, nil),
		Recipe:  api.NewRecipeHandler(service.NewRecipeService(db)),
		Tag:     api.NewTagHandler(service.NewTagService(db)),
		Profile: api.NewProfileHandler(service.NewProfileService(db)),
		// nil image service: object storage unconfigured
		Image:  api.NewImageHandler(nil),
		Health: api.NewHealthHandler(db),
	}

	return &testServer{
		db:     db,
		router: router.SetupRouter(handlers, auth, db, zap.NewNop()),
		auth:   auth,
		sender: sender,
	}
}

// login creates a user and returns a session token for it.
func (ts *testServer) login(t *testing.T, name, email string) (*models.User, string) {
	t.Helper()
	user := testhelpers.CreateUser(t, ts.db, name, email)
	token, err := ts.auth.IssueSessionToken(user)
	require.NoError(t, err)
	return user, token
}

func (ts *testServer) request(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func recipePayload() gin.H {
	return gin.H{
		"title": "Soup",
		"ingredients": []gin.H{
			{"name": "Water", "amount": "1", "unit": "l", "order": 5},
		},
		"steps": []gin.H{
			{"step_number": 99, "instruction": "Boil"},
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestCreateAndGetRecipe(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, "Alice", "alice@example.com")

	w := ts.request(t, http.MethodPost, "/api/v1/recipes", recipePayload(), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Recipe
	decode(t, w, &created)
	require.NotEqual(t, uuid.Nil, created.ID)

	// reads need no auth
	w = ts.request(t, http.MethodGet, "/api/v1/recipes/"+created.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var got models.Recipe
	decode(t, w, &got)
	assert.Equal(t, "Soup", got.Title)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "Water", got.Ingredients[0].Name)
	// client-sent order and step numbers are overridden by position
	assert.Equal(t, 0, got.Ingredients[0].SortOrder)
	require.Len(t, got.Steps, 1)
	assert.Equal(t, 1, got.Steps[0].StepNumber)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, "Alice", got.CreatedBy.Name)
	assert.Empty(t, got.CreatedBy.Email)
}

func TestCreateRecipeRejectsBadPayload(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, "Alice", "alice@example.com")

	cases := []struct {
		name    string
		payload gin.H
	}{
		{"missing title", gin.H{
			"ingredients": []gin.H{{"name": "Water"}},
			"steps":       []gin.H{{"instruction": "Boil"}},
		}},
		{"empty ingredients", gin.H{
			"title":       "Soup",
			"ingredients": []gin.H{},
			"steps":       []gin.H{{"instruction": "Boil"}},
		}},
		{"bad difficulty", gin.H{
			"title":       "Soup",
			"difficulty":  "impossible",
			"ingredients": []gin.H{{"name": "Water"}},
			"steps":       []gin.H{{"instruction": "Boil"}},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := ts.request(t, http.MethodPost, "/api/v1/recipes", tc.payload, token)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestMutationsRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.request(t, http.MethodPost, "/api/v1/recipes", recipePayload(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.request(t, http.MethodPost, "/api/v1/recipes", recipePayload(), "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.request(t, http.MethodDelete, "/api/v1/recipes/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIncompleteProfileBlocksMutations(t *testing.T) {
	ts := newTestServer(t)
	// fresh sign-ups have no name yet
	_, token := ts.login(t, "", "new@example.com")

	w := ts.request(t, http.MethodPost, "/api/v1/recipes", recipePayload(), token)
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "PROFILE_INCOMPLETE")

	w = ts.request(t, http.MethodPost, "/api/v1/tags",
		gin.H{"name": "vegan", "type": "dietary"}, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the profile itself stays reachable so setup can complete
	w = ts.request(t, http.MethodGet, "/api/v1/profile", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodPut, "/api/v1/profile", gin.H{"name": "Newcomer"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.request(t, http.MethodPost, "/api/v1/recipes", recipePayload(), token)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUpdateRecipeOwnership(t *testing.T) {
	ts := newTestServer(t)
	_, ownerToken := ts.login(t, "Alice", "alice@example.com")
	_, otherToken := ts.login(t, "Mallory", "mallory@example.com")

	w := ts.request(t, http.MethodPost, "/api/v1/recipes", recipePayload(), ownerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Recipe
	decode(t, w, &created)

	update := recipePayload()
	update["title"] = "Better Soup"

	w = ts.request(t, http.MethodPut, "/api/v1/recipes/"+created.ID.String(), update, otherToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.request(t, http.MethodPut, "/api/v1/recipes/"+uuid.NewString(), update, otherToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.request(t, http.MethodPut, "/api/v1/recipes/"+created.ID.String(), update, ownerToken)
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Recipe
	decode(t, w, &updated)
	assert.Equal(t, "Better Soup", updated.Title)
}

func TestDeleteRecipe(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, "Alice", "alice@example.com")

	w := ts.request(t, http.MethodPost, "/api/v1/recipes", recipePayload(), token)
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Recipe
	decode(t, w, &created)

	w = ts.request(t, http.MethodDelete, "/api/v1/recipes/"+created.ID.String(), nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)

	w = ts.request(t, http.MethodGet, "/api/v1/recipes/"+created.ID.String(), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListRecipesPaging(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, "Alice", "alice@example.com")

	for i := 0; i < 3; i++ {
		w := ts.request(t, http.MethodPost, "/api/v1/recipes", recipePayload(), token)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := ts.request(t, http.MethodGet, "/api/v1/recipes?limit=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var page api.ListRecipesResponse
	decode(t, w, &page)
	require.Len(t, page.Recipes, 2)
	require.NotNil(t, page.NextCursor)

	w = ts.request(t, http.MethodGet,
		fmt.Sprintf("/api/v1/recipes?limit=2&cursor=%s", page.NextCursor), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var rest api.ListRecipesResponse
	decode(t, w, &rest)
	assert.Len(t, rest.Recipes, 1)
	assert.Nil(t, rest.NextCursor)

	w = ts.request(t, http.MethodGet, "/api/v1/recipes?cursor=not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/recipes?limit=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListRecipesTagFilterParam(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, "Alice", "alice@example.com")
	tag := testhelpers.CreateTag(t, ts.db, "vegan", models.TagTypeDietary)

	payload := recipePayload()
	payload["tag_ids"] = []string{tag.ID.String()}
	w := ts.request(t, http.MethodPost, "/api/v1/recipes", payload, token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.request(t, http.MethodPost, "/api/v1/recipes", recipePayload(), token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/recipes?tag_ids="+tag.ID.String(), nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var page api.ListRecipesResponse
	decode(t, w, &page)
	assert.Len(t, page.Recipes, 1)

	w = ts.request(t, http.MethodGet, "/api/v1/recipes?tag_ids=bogus", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTagEndpoints(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, "Alice", "alice@example.com")

	w := ts.request(t, http.MethodPost, "/api/v1/tags",
		gin.H{"name": "vegan", "type": "dietary", "color": "#006400"}, token)
	require.Equal(t, http.StatusCreated, w.Code)

	// duplicate name answers 409
	w = ts.request(t, http.MethodPost, "/api/v1/tags",
		gin.H{"name": "vegan", "type": "dietary"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)

	// binding rejects bad type and color before the service sees them
	w = ts.request(t, http.MethodPost, "/api/v1/tags",
		gin.H{"name": "fusion", "type": "mood"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.request(t, http.MethodPost, "/api/v1/tags",
		gin.H{"name": "keto", "type": "dietary", "color": "#fff"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.request(t, http.MethodGet, "/api/v1/tags", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Tags []models.Tag `json:"tags"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Tags, 1)
	assert.Equal(t, "vegan", resp.Tags[0].Name)
}

func TestImageUploadUnconfigured(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.login(t, "Alice", "alice@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipes/image", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
