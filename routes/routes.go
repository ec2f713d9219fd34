package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alwiirfani/chemicals-sub000/app"
	"github.com/alwiirfani/chemicals-sub000/controllers"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.NewAuthController(s)
	userCtl := controllers.NewUserController(s)
	chemCtl := controllers.NewChemicalController(s)
	sdsCtl := controllers.NewSDSController(s)
	borrowCtl := controllers.NewBorrowingController(s)
	reportCtl := controllers.NewReportController(s)

	// 复用的中间件
	authMW := app.AuthRequired(s.AppSess, s.Repo)
	staffMW := app.StaffOnly()
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(s.Repo, a.RDB, 5*time.Minute)

	v1 := r.Group("/api/v1")

	// ------------------------------
	// 登录/登出
	// ------------------------------
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authCtl.Login)
		auth.POST("/logout", authMW, authCtl.Logout)
		auth.GET("/me", authMW, seenMW, authCtl.Me)
	}

	// ------------------------------
	// 用户管理（仅管理员）
	// ------------------------------
	users := v1.Group("/users", authMW, adminMW)
	{
		users.GET("", userCtl.ListUsers) // ?q=&page=&size=
		users.POST("", userCtl.CreateUser)
		users.GET("/:id", userCtl.GetUser)
		users.PUT("/:id", userCtl.UpdateUser)
		users.DELETE("/:id", userCtl.DeleteUser)
	}

	// ------------------------------
	// 化学品库存
	// ------------------------------
	chemicals := v1.Group("/chemicals", authMW, seenMW)
	{
		chemicals.GET("", chemCtl.ListChemicals)
		chemicals.GET("/:id", chemCtl.GetChemical)
		chemicals.GET("/:id/sds", sdsCtl.ListForChemical)
	}
	chemicalsStaff := v1.Group("/chemicals", authMW, staffMW)
	{
		chemicalsStaff.POST("", chemCtl.CreateChemical)
		chemicalsStaff.PUT("/:id", chemCtl.UpdateChemical)
		chemicalsStaff.POST("/:id/adjust", chemCtl.AdjustStock)
		chemicalsStaff.DELETE("/:id", chemCtl.DeleteChemical)
		chemicalsStaff.POST("/:id/sds", sdsCtl.Upload)
	}

	// SDS 文档
	sds := v1.Group("/sds", authMW)
	{
		sds.GET("/:id", sdsCtl.Get)
		sds.DELETE("/:id", staffMW, sdsCtl.Delete)
	}

	// ------------------------------
	// 借用流程
	// ------------------------------
	borrowings := v1.Group("/borrowings", authMW, seenMW)
	{
		borrowings.POST("", borrowCtl.Create)
		borrowings.GET("", borrowCtl.List) // ?status=&userId=&page=&size=
		borrowings.GET("/:id", borrowCtl.Get)
		borrowings.PATCH("/:id", staffMW, borrowCtl.Transition)
	}

	// ------------------------------
	// 报表（仅 staff）
	// ------------------------------
	reports := v1.Group("/reports", authMW, staffMW)
	{
		reports.GET("/dashboard", reportCtl.Dashboard)
		reports.GET("/usage", reportCtl.Usage)
		reports.GET("/usage/export", reportCtl.UsageExport)
	}
}
