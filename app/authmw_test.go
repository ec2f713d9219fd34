package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/alwiirfani/chemicals-sub000/db"
	"github.com/alwiirfani/chemicals-sub000/models"
	"github.com/alwiirfani/chemicals-sub000/session"
)

func roleRouter(role models.Role, mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("role", role) })
	r.GET("/x", mw, func(c *gin.Context) { c.JSON(http.StatusOK, H{"ok": true}) })
	return r
}

func TestStaffOnly(t *testing.T) {
	cases := []struct {
		role models.Role
		code int
	}{
		{models.RoleAdmin, http.StatusOK},
		{models.RoleLaboran, http.StatusOK},
		{models.RoleUser, http.StatusForbidden},
	}
	for _, tc := range cases {
		r := roleRouter(tc.role, StaffOnly())
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
		require.Equal(t, tc.code, rr.Code, "role %s", tc.role)
	}
}

func TestAdminOnly(t *testing.T) {
	r := roleRouter(models.RoleLaboran, AdminOnly())
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusForbidden, rr.Code)

	r = roleRouter(models.RoleAdmin, AdminOnly())
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusOK, rr.Code)
}

type fakeSessionReader struct {
	sess *session.AppSession
}

func (f *fakeSessionReader) Get(ctx context.Context, id string) (*session.AppSession, error) {
	return f.sess, nil
}

func (f *fakeSessionReader) Delete(ctx context.Context, id string) error { return nil }

// 会话快照里的角色生效；改角色时会话会被整体吊销，所以不会过期
func TestAuthRequiredUsesSessionRole(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT \* FROM "lab_users" WHERE id = `).
		WithArgs("u1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "role", "active"}).
			AddRow("u1", "lena@lab.test", "USER", true))

	sessions := &fakeSessionReader{sess: &session.AppSession{UserID: "u1", Role: models.RoleLaboran}}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	var gotRole models.Role
	r.GET("/x", AuthRequired(sessions, db.NewRepo(gdb)), func(c *gin.Context) {
		gotRole = CurrentRole(c)
		c.JSON(http.StatusOK, H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: AppSessionCookie, Value: "sid-1"})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, models.RoleLaboran, gotRole)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRequiredWithoutSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RoleRequired(models.RoleAdmin), func(c *gin.Context) { c.JSON(http.StatusOK, H{"ok": true}) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}
