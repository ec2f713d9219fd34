package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alwiirfani/chemicals-sub000/db"
	"github.com/alwiirfani/chemicals-sub000/models"
	"github.com/alwiirfani/chemicals-sub000/session"
)

const AppSessionCookie = "lab_session"

type sessionReader interface {
	Get(ctx context.Context, id string) (*session.AppSession, error)
	Delete(ctx context.Context, id string) error
}

func AuthRequired(appSess sessionReader, repo *db.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		as, err := appSess.Get(c.Request.Context(), ck.Value)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "invalid session"})
			return
		}

		// 确认用户仍存在且未停用（只查一次）。角色用会话里的快照：
		// 改角色/停用时会吊销该用户全部会话，快照不会过期
		u, err := repo.FindUserByID(c.Request.Context(), as.UserID)
		if err != nil || !u.Active {
			_ = appSess.Delete(c.Request.Context(), ck.Value)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		c.Set("userID", u.ID)
		c.Set("email", u.Email)
		c.Set("role", as.Role)

		c.Next()
	}
}

// StaffOnly admits ADMIN and LABORAN. AuthRequired must run first.
func StaffOnly() gin.HandlerFunc {
	return RoleRequired(models.RoleAdmin, models.RoleLaboran)
}

func AdminOnly() gin.HandlerFunc {
	return RoleRequired(models.RoleAdmin)
}

func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("role")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		role, _ := v.(models.Role)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
	}
}

// CurrentUserID reads the id AuthRequired stored on the context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get("userID")
	id, _ := v.(string)
	return id
}

func CurrentRole(c *gin.Context) models.Role {
	v, _ := c.Get("role")
	role, _ := v.(models.Role)
	return role
}
