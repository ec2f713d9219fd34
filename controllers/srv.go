// controllers/srv.go
package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alwiirfani/chemicals-sub000/app"
	"github.com/alwiirfani/chemicals-sub000/config"
	"github.com/alwiirfani/chemicals-sub000/db"
	"github.com/alwiirfani/chemicals-sub000/models"
	"github.com/alwiirfani/chemicals-sub000/session"
	"github.com/alwiirfani/chemicals-sub000/storage"
)

type Srv struct {
	Repo      *db.Repo
	AppSess   *session.AppSessionStore
	Storage   *storage.Uploader
	Log       *slog.Logger
	WebOrigin string
	Cfg       config.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:      db.NewRepo(a.DB),
		AppSess:   a.AppSessions(),
		Storage:   a.Storage,
		Log:       a.Log,
		WebOrigin: a.Config.WebOrigin,
		Cfg:       a.Config,
	}
}

// --- helpers ---

// 统一设置业务会话 Cookie
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   int(maxAge / time.Second),
	})
}

func (s *Srv) clearAppCookie(w http.ResponseWriter) {
	secure := strings.HasPrefix(s.WebOrigin, "https://")
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

// 登录成功：创建会话 + 触发登录快照
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, u *models.User, ip, ua string) error {
	if err := s.Repo.TouchUserLogin(ctx, u.ID, ip, ua); err != nil {
		s.Log.Warn("touch login", "err", err)
	}
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, u.ID, u.Role); err != nil {
		return err
	}
	s.setAppCookie(w, id, s.Cfg.Session.TTL())
	return nil
}
