package httpapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"designcollab/internal/design"
	"designcollab/internal/store"
)

// UserRepository is the persistence surface the user endpoints need.
type UserRepository interface {
	Create(ctx context.Context, u *store.User) error
	ByID(ctx context.Context, id string) (*store.User, error)
	List(ctx context.Context, page, limit int) ([]store.User, int, error)
	SearchByName(ctx context.Context, query string, limit int) ([]store.User, error)
	Update(ctx context.Context, id string, name, email, avatar *string) (*store.User, error)
	Delete(ctx context.Context, id string) error
}

// CommentRepository is the persistence surface the comment endpoints need.
type CommentRepository interface {
	Create(ctx context.Context, c *store.Comment) error
	ByID(ctx context.Context, id string) (*store.Comment, error)
	ByDesign(ctx context.Context, designID string) ([]store.Comment, error)
	List(ctx context.Context, designID, authorID string, page, limit int) ([]store.Comment, int, error)
	Update(ctx context.Context, id string, text *string, mentions []string) (*store.Comment, error)
	CountByAuthor(ctx context.Context, authorID string) (int, error)
	Delete(ctx context.Context, id string) error
}

// Pinger reports storage liveness for the health endpoints. nil when the
// service runs on the in-memory store.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// API serves the REST surface: design/user/comment CRUD and health. Writes
// through these endpoints bypass the real-time broadcast; connected editors
// converge on the next read.
type API struct {
	designs  store.DesignRepository
	fields   *design.FieldValidator
	users    UserRepository
	comments CommentRepository
	db       Pinger
	logger   *zap.Logger
}

func New(designs store.DesignRepository, users UserRepository, comments CommentRepository, db Pinger, logger *zap.Logger) *API {
	return &API{
		designs:  designs,
		fields:   design.NewFieldValidator(),
		users:    users,
		comments: comments,
		db:       db,
		logger:   logger,
	}
}

// Register adds all REST routes to the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", a.handleIndex)

	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("GET /api/health/db", a.handleHealthDB)

	mux.HandleFunc("GET /api/designs", a.handleListDesigns)
	mux.HandleFunc("GET /api/designs/{id}", a.handleGetDesign)
	mux.HandleFunc("POST /api/designs/create", a.handleCreateDesign)
	mux.HandleFunc("PUT /api/designs/{id}", a.handleUpdateDesign)
	mux.HandleFunc("DELETE /api/designs/{id}", a.handleDeleteDesign)

	if a.users != nil {
		mux.HandleFunc("GET /api/users", a.handleListUsers)
		mux.HandleFunc("POST /api/users", a.handleCreateUser)
		mux.HandleFunc("GET /api/users/search", a.handleSearchUsers)
		mux.HandleFunc("GET /api/users/{id}", a.handleGetUser)
		mux.HandleFunc("PUT /api/users/{id}", a.handleUpdateUser)
		mux.HandleFunc("DELETE /api/users/{id}", a.handleDeleteUser)
	}
	if a.comments != nil {
		mux.HandleFunc("GET /api/comments", a.handleQueryComments)
		mux.HandleFunc("POST /api/comments", a.handleCreateComment)
		mux.HandleFunc("GET /api/comments/design/{id}", a.handleListComments)
		mux.HandleFunc("GET /api/comments/{id}", a.handleGetComment)
		mux.HandleFunc("PUT /api/comments/{id}", a.handleUpdateComment)
		mux.HandleFunc("DELETE /api/comments/{id}", a.handleDeleteComment)
	}
}

func (a *API) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Design Editor API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":   "/api/health",
			"healthDb": "/api/health/db",
			"designs":  "/api/designs",
			"users":    "/api/users",
			"comments": "/api/comments",
			"realtime": "/ws",
		},
	})
}
