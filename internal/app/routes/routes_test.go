package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studyhub/internal/app/controllers"
	"github.com/yigit/studyhub/internal/app/models"
	"github.com/yigit/studyhub/internal/app/repositories"
	"github.com/yigit/studyhub/internal/app/services"
	"github.com/yigit/studyhub/internal/middleware"
	"github.com/yigit/studyhub/internal/pkg/auth"
	"github.com/yigit/studyhub/internal/recordstore"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.BcryptCost = bcrypt.MinCost
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Reason  string `json:"reason"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	repos  *repositories.Repositories
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	require.NoError(t, middleware.RegisterValidators())

	store, err := recordstore.Open(t.TempDir(), recordstore.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	repos := repositories.NewLocalRepositories(store)
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		ResetTokenExp:  10 * time.Minute,
		TokenIssuer:    "studyhub-test",
	})
	svc := services.NewServices(repos, jwtService, zerolog.Nop())

	router := gin.New()
	SetupRouter(router, &Controllers{
		Auth:      controllers.NewAuthController(svc.AuthService, zerolog.Nop()),
		Study:     controllers.NewStudyController(svc.StudyService, zerolog.Nop()),
		Notice:    controllers.NewNoticeController(svc.NoticeService, zerolog.Nop()),
		Community: controllers.NewCommunityController(svc.PostService, svc.CommentService, zerolog.Nop()),
		Health:    controllers.NewHealthController(svc.HealthService),
	}, middleware.NewAuthMiddleware(jwtService, repos.UserRepository, zerolog.Nop()))

	return &testAPI{t: t, router: router, repos: repos}
}

// do sends a JSON request and decodes the envelope. data, when non-nil,
// receives the decoded data field.
func (a *testAPI) do(method, path, token string, body any, data any) (int, apiResponse) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	if data != nil && len(resp.Data) > 0 {
		require.NoError(a.t, json.Unmarshal(resp.Data, data))
	}
	return rec.Code, resp
}

type session struct {
	Token struct {
		AccessToken string `json:"accessToken"`
	} `json:"token"`
	User struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

func (a *testAPI) register(username string) session {
	a.t.Helper()
	var s session
	status, resp := a.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username":         username,
		"password":         "secret1",
		"name":             username + " name",
		"securityQuestion": "First pet?",
		"securityAnswer":   "Choco",
	}, &s)
	require.Equal(a.t, http.StatusCreated, status, resp.Error)
	return s
}

func (a *testAPI) promote(userID string) {
	a.t.Helper()
	ctx := context.Background()
	user, err := a.repos.UserRepository.GetByID(ctx, userID)
	require.NoError(a.t, err)
	user.Role = models.RoleAdmin
	require.NoError(a.t, a.repos.UserRepository.Update(ctx, user))
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register("alice")
	assert.NotEmpty(t, alice.Token.AccessToken)
	assert.Equal(t, "user", alice.User.Role)

	status, resp := api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "alice", "password": "secret1", "name": "Someone",
	}, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "USERNAME_TAKEN", resp.Error.Reason)

	status, resp = api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"username": "bob", "password": "12345", "name": "Bob",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VAL_001", resp.Error.Code)
	assert.Equal(t, "password", resp.Error.Field)

	status, _ = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"username": "alice", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var login session
	status, _ = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"username": "alice", "password": "secret1"}, &login)
	require.Equal(t, http.StatusOK, status)

	var me struct {
		Username string `json:"username"`
	}
	status, _ = api.do(http.MethodGet, "/api/v1/auth/me", login.Token.AccessToken, nil, &me)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", me.Username)

	status, _ = api.do(http.MethodGet, "/api/v1/auth/me", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestPasswordRecoveryFlow(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice")

	var question struct {
		SecurityQuestion string `json:"securityQuestion"`
	}
	status, _ := api.do(http.MethodPost, "/api/v1/auth/security-question", "", map[string]any{"username": "alice"}, &question)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "First pet?", question.SecurityQuestion)

	status, _ = api.do(http.MethodPost, "/api/v1/auth/verify-security-answer", "", map[string]any{"username": "alice", "answer": "rex"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	var reset struct {
		ResetToken string `json:"resetToken"`
	}
	status, _ = api.do(http.MethodPost, "/api/v1/auth/verify-security-answer", "", map[string]any{"username": "alice", "answer": " cho CO "}, &reset)
	require.Equal(t, http.StatusOK, status)

	status, _ = api.do(http.MethodPost, "/api/v1/auth/reset-password", "", map[string]any{
		"username": "alice", "resetToken": reset.ResetToken, "newPassword": "newsecret",
	}, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]any{"username": "alice", "password": "newsecret"}, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestStudyEndpoints(t *testing.T) {
	api := newTestAPI(t)
	leader := api.register("leader")
	member := api.register("member")
	late := api.register("late")

	status, resp := api.do(http.MethodPost, "/api/v1/studies", "", map[string]any{}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, resp = api.do(http.MethodPost, "/api/v1/studies", leader.Token.AccessToken, map[string]any{
		"title": "Go", "description": "weekly", "category": "coding", "maxMembers": 1,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "maxMembers", resp.Error.Field)

	var study struct {
		ID          string `json:"id"`
		MemberCount int    `json:"memberCount"`
		Leader      struct {
			Name string `json:"name"`
		} `json:"leader"`
	}
	status, _ = api.do(http.MethodPost, "/api/v1/studies", leader.Token.AccessToken, map[string]any{
		"title": "Go", "description": "weekly", "category": "coding", "maxMembers": 2, "deadline": "2024-05-01",
	}, &study)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 1, study.MemberCount)
	assert.Equal(t, "leader name", study.Leader.Name)
	path := "/api/v1/studies/" + study.ID

	status, _ = api.do(http.MethodPost, path+"/join", member.Token.AccessToken, nil, &study)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, study.MemberCount)

	status, resp = api.do(http.MethodPost, path+"/join", member.Token.AccessToken, nil, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_MEMBER", resp.Error.Reason)

	status, resp = api.do(http.MethodPost, path+"/join", late.Token.AccessToken, nil, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "STUDY_FULL", resp.Error.Reason)

	status, resp = api.do(http.MethodPost, path+"/leave", leader.Token.AccessToken, nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "LEADER_CANNOT_LEAVE", resp.Error.Reason)

	status, resp = api.do(http.MethodPost, path+"/leave", late.Token.AccessToken, nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "NOT_MEMBER", resp.Error.Reason)

	status, _ = api.do(http.MethodPut, path, member.Token.AccessToken, map[string]any{"title": "Mine"}, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var list struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		Pagination struct {
			TotalItems int `json:"totalItems"`
		} `json:"pagination"`
	}
	status, _ = api.do(http.MethodGet, "/api/v1/studies?search=GO&size=5", "", nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, list.Pagination.TotalItems)

	status, _ = api.do(http.MethodDelete, path, member.Token.AccessToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = api.do(http.MethodDelete, path, leader.Token.AccessToken, nil, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = api.do(http.MethodGet, path, "", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNoticeEndpoints(t *testing.T) {
	api := newTestAPI(t)
	user := api.register("user")
	admin := api.register("admin")
	api.promote(admin.User.ID)

	body := map[string]any{"title": "Exam week", "content": "Library opens 24h", "category": "important", "isPinned": true}
	status, resp := api.do(http.MethodPost, "/api/v1/notices", user.Token.AccessToken, body, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "AUTH_009", resp.Error.Code)

	var notice struct {
		ID    string `json:"id"`
		Views int    `json:"views"`
	}
	status, _ = api.do(http.MethodPost, "/api/v1/notices", admin.Token.AccessToken, body, &notice)
	require.Equal(t, http.StatusCreated, status)

	status, _ = api.do(http.MethodGet, "/api/v1/notices/"+notice.ID, "", nil, &notice)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, notice.Views)

	status, _ = api.do(http.MethodDelete, "/api/v1/notices/"+notice.ID, admin.Token.AccessToken, nil, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestCommunityEndpoints(t *testing.T) {
	api := newTestAPI(t)
	author := api.register("author")
	reader := api.register("reader")

	var post struct {
		ID           string `json:"id"`
		Category     string `json:"category"`
		Views        int    `json:"views"`
		CommentCount *int   `json:"commentCount"`
	}
	status, _ := api.do(http.MethodPost, "/api/v1/community/posts", author.Token.AccessToken, map[string]any{
		"title": "Hello", "content": "First post",
	}, &post)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "free", post.Category)
	path := "/api/v1/community/posts/" + post.ID

	var like struct {
		Liked     bool `json:"liked"`
		LikeCount int  `json:"likeCount"`
	}
	status, _ = api.do(http.MethodPost, path+"/like", reader.Token.AccessToken, nil, &like)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, like.Liked)
	status, _ = api.do(http.MethodPost, path+"/like", reader.Token.AccessToken, nil, &like)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, like.Liked)
	assert.Equal(t, 0, like.LikeCount)

	status, resp := api.do(http.MethodPost, path+"/comments", reader.Token.AccessToken, map[string]any{"content": "   "}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "content", resp.Error.Field)

	var comment struct {
		ID string `json:"id"`
	}
	status, _ = api.do(http.MethodPost, path+"/comments", reader.Token.AccessToken, map[string]any{"content": "Welcome"}, &comment)
	require.Equal(t, http.StatusCreated, status)

	status, _ = api.do(http.MethodPost, "/api/v1/community/posts/999/comments", reader.Token.AccessToken, map[string]any{"content": "lost"}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	var comments []struct {
		Content string `json:"content"`
	}
	status, _ = api.do(http.MethodGet, path+"/comments", "", nil, &comments)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, comments, 1)

	status, _ = api.do(http.MethodGet, path, "", nil, &post)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, post.Views)
	require.NotNil(t, post.CommentCount)
	assert.Equal(t, 1, *post.CommentCount)

	status, _ = api.do(http.MethodDelete, "/api/v1/community/comments/"+comment.ID, author.Token.AccessToken, nil, nil)
	assert.Equal(t, http.StatusForbidden, status)

	var deleted struct {
		DeletedComments int `json:"deletedComments"`
	}
	status, _ = api.do(http.MethodDelete, path, author.Token.AccessToken, nil, &deleted)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, deleted.DeletedComments)

	status, _ = api.do(http.MethodGet, path+"/comments", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	var health struct {
		Status  string `json:"status"`
		Backend string `json:"backend"`
	}
	for _, path := range []string{"/health", "/api/v1/health"} {
		status, resp := api.do(http.MethodGet, path, "", nil, &health)
		require.Equal(t, http.StatusOK, status)
		assert.True(t, resp.Success)
		assert.Equal(t, "ok", health.Status)
		assert.Equal(t, "local", health.Backend)
	}
}
