package httpapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"designcollab/internal/httpapi"
	"designcollab/internal/store"
)

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]store.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]store.User)}
}

func (f *fakeUsers) Create(ctx context.Context, u *store.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return store.ErrEmailTaken
		}
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	f.users[u.ID] = *u
	return nil
}

func (f *fakeUsers) ByID(ctx context.Context, id string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

func (f *fakeUsers) List(ctx context.Context, page, limit int) ([]store.User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (f *fakeUsers) SearchByName(ctx context.Context, query string, limit int) ([]store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []store.User{}
	for _, u := range f.users {
		if strings.Contains(strings.ToLower(u.Name), strings.ToLower(query)) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsers) Update(ctx context.Context, id string, name, email, avatar *string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	if email != nil {
		for otherID, other := range f.users {
			if otherID != id && strings.EqualFold(other.Email, *email) {
				return nil, store.ErrEmailTaken
			}
		}
		u.Email = strings.ToLower(*email)
	}
	if name != nil {
		u.Name = *name
	}
	if avatar != nil {
		u.Avatar = *avatar
	}
	u.UpdatedAt = time.Now()
	f.users[id] = u
	return &u, nil
}

func (f *fakeUsers) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeComments struct {
	mu       sync.Mutex
	comments map[string]store.Comment
}

func newFakeComments() *fakeComments {
	return &fakeComments{comments: make(map[string]store.Comment)}
}

func (f *fakeComments) Create(ctx context.Context, c *store.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Mentions == nil {
		c.Mentions = []string{}
	}
	f.comments[c.ID] = *c
	return nil
}

func (f *fakeComments) ByID(ctx context.Context, id string) (*store.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, store.ErrCommentNotFound
	}
	return &c, nil
}

func (f *fakeComments) ByDesign(ctx context.Context, designID string) ([]store.Comment, error) {
	out, _, err := f.List(ctx, designID, "", 1, 1000)
	return out, err
}

func (f *fakeComments) List(ctx context.Context, designID, authorID string, page, limit int) ([]store.Comment, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matched := []store.Comment{}
	for _, c := range f.comments {
		if designID != "" && c.DesignID != designID {
			continue
		}
		if authorID != "" && c.AuthorID != authorID {
			continue
		}
		matched = append(matched, c)
	}
	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []store.Comment{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakeComments) Update(ctx context.Context, id string, text *string, mentions []string) (*store.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, store.ErrCommentNotFound
	}
	if text != nil {
		c.Text = *text
	}
	if mentions != nil {
		c.Mentions = mentions
	}
	c.UpdatedAt = time.Now()
	f.comments[id] = c
	return &c, nil
}

func (f *fakeComments) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.comments {
		if c.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (f *fakeComments) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return store.ErrCommentNotFound
	}
	delete(f.comments, id)
	return nil
}

func newFullServer(t *testing.T) (*httptest.Server, *fakeUsers, *fakeComments) {
	t.Helper()
	users := newFakeUsers()
	comments := newFakeComments()
	api := httpapi.New(store.NewMemoryDesignStore(), users, comments, nil, zap.NewNop())
	mux := http.NewServeMux()
	api.Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, users, comments
}

func createUser(t *testing.T, srv *httptest.Server, name, email string) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/users", map[string]interface{}{
		"name": name, "email": email,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody(t, resp)["data"].(map[string]interface{})["id"].(string)
}

func TestUpdateUser(t *testing.T) {
	srv, _, _ := newFullServer(t)
	id := createUser(t, srv, "Ada Byron", "ada@example.com")

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/users/"+id, map[string]interface{}{
		"name":  "Ada Lovelace",
		"email": "Lovelace@Example.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "User updated successfully", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Ada Lovelace", data["name"])
	assert.Equal(t, "lovelace@example.com", data["email"])
}

func TestUpdateUserValidation(t *testing.T) {
	srv, _, _ := newFullServer(t)
	id := createUser(t, srv, "Ada Byron", "ada@example.com")
	createUser(t, srv, "Grace Hopper", "grace@example.com")

	resp := doRequest(t, http.MethodPut, srv.URL+"/api/users/"+id, map[string]interface{}{"name": "x"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UPDATE_ERROR", decodeBody(t, resp)["code"])

	resp = doRequest(t, http.MethodPut, srv.URL+"/api/users/"+id, map[string]interface{}{"email": "grace@example.com"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE_EMAIL", decodeBody(t, resp)["code"])

	resp = doRequest(t, http.MethodPut, srv.URL+"/api/users/ghost", map[string]interface{}{"name": "Whoever"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeBody(t, resp)["code"])
}

func TestDeleteUserBlockedByComments(t *testing.T) {
	srv, _, comments := newFullServer(t)
	id := createUser(t, srv, "Ada Byron", "ada@example.com")

	require.NoError(t, comments.Create(t.Context(), &store.Comment{
		ID: "c1", DesignID: "d1", AuthorID: id, Text: "looks good",
	}))

	resp := doRequest(t, http.MethodDelete, srv.URL+"/api/users/"+id, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "USER_HAS_COMMENTS", body["code"])

	require.NoError(t, comments.Delete(t.Context(), "c1"))

	resp = doRequest(t, http.MethodDelete, srv.URL+"/api/users/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Equal(t, "User deleted successfully", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, id, data["id"])
	assert.Equal(t, "ada@example.com", data["email"])

	resp = doRequest(t, http.MethodDelete, srv.URL+"/api/users/"+id, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestGetAndUpdateComment(t *testing.T) {
	srv, _, comments := newFullServer(t)
	require.NoError(t, comments.Create(t.Context(), &store.Comment{
		ID: "c1", DesignID: "d1", AuthorID: "u1", Text: "first pass",
	}))

	resp, err := http.Get(srv.URL + "/api/comments/c1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeBody(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, "first pass", data["text"])

	resp = doRequest(t, http.MethodPut, srv.URL+"/api/comments/c1", map[string]interface{}{
		"text":     "second pass",
		"mentions": []string{"u2"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Comment updated successfully", body["message"])
	data = body["data"].(map[string]interface{})
	assert.Equal(t, "second pass", data["text"])
	assert.Equal(t, []interface{}{"u2"}, data["mentions"])

	resp = doRequest(t, http.MethodPut, srv.URL+"/api/comments/c1", map[string]interface{}{"text": "   "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "UPDATE_ERROR", decodeBody(t, resp)["code"])

	resp, err = http.Get(srv.URL + "/api/comments/ghost")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeBody(t, resp)["code"])
}

func TestQueryComments(t *testing.T) {
	srv, _, comments := newFullServer(t)
	for _, c := range []store.Comment{
		{ID: "c1", DesignID: "d1", AuthorID: "u1", Text: "one"},
		{ID: "c2", DesignID: "d1", AuthorID: "u2", Text: "two"},
		{ID: "c3", DesignID: "d2", AuthorID: "u1", Text: "three"},
	} {
		c := c
		require.NoError(t, comments.Create(t.Context(), &c))
	}

	resp, err := http.Get(srv.URL + "/api/comments")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "MISSING_PARAMETER", decodeBody(t, resp)["code"])

	resp, err = http.Get(srv.URL + "/api/comments?designId=d1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, float64(2), body["total"])

	resp, err = http.Get(srv.URL + "/api/comments?authorId=u1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decodeBody(t, resp)["count"])
}

func TestDeleteCommentReturnsSnapshot(t *testing.T) {
	srv, _, comments := newFullServer(t)
	require.NoError(t, comments.Create(t.Context(), &store.Comment{
		ID: "c1", DesignID: "d1", AuthorID: "u1", Text: "drop me",
	}))

	resp := doRequest(t, http.MethodDelete, srv.URL+"/api/comments/c1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "Comment deleted successfully", body["message"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "drop me", data["text"])

	resp = doRequest(t, http.MethodDelete, srv.URL+"/api/comments/c1", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
