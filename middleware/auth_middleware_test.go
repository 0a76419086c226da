package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/solenne/shopcore/middleware"
	"github.com/solenne/shopcore/models"
	"github.com/solenne/shopcore/utils"
)

type stubUserStore struct {
	users map[bson.ObjectID]*models.User
}

func (s *stubUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (s *stubUserStore) FindByID(_ context.Context, id bson.ObjectID) (*models.User, error) {
	return s.users[id], nil
}

func (s *stubUserStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	s.users[user.ID] = user
	return user, nil
}

func (s *stubUserStore) UpdateCart(_ context.Context, userID bson.ObjectID, items []models.CartItem) error {
	if u, ok := s.users[userID]; ok {
		u.CartItems = items
	}
	return nil
}

func guardFixture(t *testing.T) (*gin.Engine, *utils.TokenManager, *models.User, *models.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	customer := &models.User{ID: bson.NewObjectID(), Name: "C", Email: "c@x.com", Role: models.RoleCustomer}
	admin := &models.User{ID: bson.NewObjectID(), Name: "M", Email: "m@x.com", Role: models.RoleAdmin}
	store := &stubUserStore{users: map[bson.ObjectID]*models.User{
		customer.ID: customer,
		admin.ID:    admin,
	}}

	tokens := utils.NewTokenManager("guard-access", "guard-refresh", 15*time.Minute, 7*24*time.Hour)

	r := gin.New()
	r.GET("/me", middleware.Protect(store, tokens), func(c *gin.Context) {
		user, _ := middleware.CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"email": user.Email})
	})
	r.GET("/admin", middleware.Protect(store, tokens), middleware.AdminOnly(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r, tokens, customer, admin
}

func get(r *gin.Engine, path string, cookies []*http.Cookie, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProtectRejectsMissingToken(t *testing.T) {
	r, _, _, _ := guardFixture(t)

	if w := get(r, "/me", nil, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestProtectRejectsInvalidToken(t *testing.T) {
	r, _, _, _ := guardFixture(t)

	ck := &http.Cookie{Name: utils.AccessTokenCookie, Value: "garbage"}
	if w := get(r, "/me", []*http.Cookie{ck}, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestProtectAcceptsCookieToken(t *testing.T) {
	r, tokens, customer, _ := guardFixture(t)

	token, err := tokens.IssueAccessToken(customer.ID.Hex())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	ck := &http.Cookie{Name: utils.AccessTokenCookie, Value: token}
	w := get(r, "/me", []*http.Cookie{ck}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestProtectAcceptsBearerToken(t *testing.T) {
	r, tokens, customer, _ := guardFixture(t)

	token, err := tokens.IssueAccessToken(customer.ID.Hex())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if w := get(r, "/me", nil, token); w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestProtectRejectsUnknownUser(t *testing.T) {
	r, tokens, _, _ := guardFixture(t)

	token, err := tokens.IssueAccessToken(bson.NewObjectID().Hex())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	ck := &http.Cookie{Name: utils.AccessTokenCookie, Value: token}
	if w := get(r, "/me", []*http.Cookie{ck}, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestProtectRejectsRefreshTokenAsAccess(t *testing.T) {
	r, tokens, customer, _ := guardFixture(t)

	token, err := tokens.IssueRefreshToken(customer.ID.Hex())
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}

	ck := &http.Cookie{Name: utils.AccessTokenCookie, Value: token}
	if w := get(r, "/me", []*http.Cookie{ck}, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh token accepted as access token: status = %d", w.Code)
	}
}

func TestAdminOnly(t *testing.T) {
	r, tokens, customer, admin := guardFixture(t)

	customerToken, err := tokens.IssueAccessToken(customer.ID.Hex())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	adminToken, err := tokens.IssueAccessToken(admin.ID.Hex())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	if w := get(r, "/admin", []*http.Cookie{{Name: utils.AccessTokenCookie, Value: customerToken}}, ""); w.Code != http.StatusForbidden {
		t.Fatalf("customer on admin route: status = %d, want 403", w.Code)
	}
	if w := get(r, "/admin", []*http.Cookie{{Name: utils.AccessTokenCookie, Value: adminToken}}, ""); w.Code != http.StatusOK {
		t.Fatalf("admin on admin route: status = %d, want 200", w.Code)
	}
}
