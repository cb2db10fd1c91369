package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendly/attendly/internal/app/controllers"
	"github.com/attendly/attendly/internal/app/models"
	"github.com/attendly/attendly/internal/middleware"
)

// Controllers groups the HTTP handlers mounted by SetupRouter
type Controllers struct {
	Auth        *controllers.AuthController
	Users       *controllers.UserController
	Departments *controllers.DepartmentController
	Hierarchy   *controllers.HierarchyController
	Subjects    *controllers.SubjectController
	Students    *controllers.StudentController
	Allocations *controllers.AllocationController
	Lectures    *controllers.LectureController
	Reports     *controllers.ReportController
	Dashboards  *controllers.DashboardController
	Feed        *controllers.FeedController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c *Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.POST("/auth/login", c.Auth.Login)

	// --- Authenticated routes ---
	// Every request below carries a valid token. DEVELOPER accounts are read-only.
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth(), authMiddleware.ReadOnlyGuard())

	auth := authenticated.Group("/auth")
	{
		auth.GET("/me", c.Auth.Me)
		auth.PUT("/password", c.Auth.ChangePassword)
	}

	users := authenticated.Group("/users")
	users.Use(authMiddleware.RoleRequired(models.RoleSuperAdmin, models.RoleDeveloper, models.RoleHOD))
	{
		users.GET("", c.Users.ListUsers)
		users.GET("/:id", c.Users.GetUser)
		users.POST("", c.Users.CreateUser)
		users.PUT("/:id", c.Users.UpdateUser)
		users.PUT("/:id/password", c.Users.ResetPassword)
		users.DELETE("/:id", c.Users.DeleteUser)
	}

	departments := authenticated.Group("/departments")
	{
		departments.GET("", c.Departments.GetAllDepartments)
		departments.GET("/:id", c.Departments.GetDepartmentByID)
		departments.GET("/:id/tree", c.Departments.GetDepartmentTree)

		departmentsAdmin := departments.Group("")
		departmentsAdmin.Use(authMiddleware.RoleRequired(models.RoleSuperAdmin))
		{
			departmentsAdmin.POST("", c.Departments.CreateDepartment)
			departmentsAdmin.PUT("/:id", c.Departments.UpdateDepartment)
			departmentsAdmin.PUT("/:id/head", c.Departments.AssignHead)
			departmentsAdmin.DELETE("/:id", c.Departments.DeleteDepartment)
		}
	}

	classes := authenticated.Group("/classes")
	{
		classes.GET("", c.Hierarchy.ListClasses)
		classes.GET("/:id", c.Hierarchy.GetClass)
		classes.GET("/:id/hierarchy", c.Hierarchy.GetClassHierarchy)
		classes.POST("", c.Hierarchy.CreateClass)
		classes.PUT("/:id", c.Hierarchy.UpdateClass)
		classes.DELETE("/:id", c.Hierarchy.DeleteClass)
	}

	divisions := authenticated.Group("/divisions")
	{
		divisions.GET("", c.Hierarchy.ListDivisions)
		divisions.GET("/:id", c.Hierarchy.GetDivision)
		divisions.POST("", c.Hierarchy.CreateDivision)
		divisions.PUT("/:id", c.Hierarchy.UpdateDivision)
		divisions.DELETE("/:id", c.Hierarchy.DeleteDivision)

		// Reports
		divisions.GET("/:id/report", c.Reports.GetDivisionReport)
		divisions.GET("/:id/report/export", c.Reports.ExportDivisionReport)
		divisions.GET("/:id/defaulters", c.Reports.GetDefaulters)
	}

	labs := authenticated.Group("/labs")
	{
		labs.GET("", c.Hierarchy.ListLabs)
		labs.GET("/:id", c.Hierarchy.GetLab)
		labs.POST("", c.Hierarchy.CreateLab)
		labs.PUT("/:id", c.Hierarchy.UpdateLab)
		labs.DELETE("/:id", c.Hierarchy.DeleteLab)
	}

	subjects := authenticated.Group("/subjects")
	{
		subjects.GET("", c.Subjects.ListSubjects)
		subjects.GET("/:id", c.Subjects.GetSubject)
		subjects.POST("", c.Subjects.CreateSubject)
		subjects.PUT("/:id", c.Subjects.UpdateSubject)
		subjects.DELETE("/:id", c.Subjects.DeleteSubject)
	}

	students := authenticated.Group("/students")
	{
		students.GET("", c.Students.ListStudents)
		students.GET("/:id", c.Students.GetStudent)
		students.GET("/:id/report", c.Students.GetStudentReport)
		students.POST("", c.Students.CreateStudent)
		students.POST("/bulk", c.Students.BulkImport)
		students.PUT("/:id", c.Students.UpdateStudent)
		students.DELETE("/:id", c.Students.DeleteStudent)
	}

	allocations := authenticated.Group("/allocations")
	{
		allocations.GET("", c.Allocations.ListAllocations)
		allocations.GET("/:id", c.Allocations.GetAllocation)
		allocations.POST("", c.Allocations.CreateAllocation)
		allocations.DELETE("/:id", c.Allocations.DeleteAllocation)
	}

	lectures := authenticated.Group("/lectures")
	{
		lectures.GET("", c.Lectures.ListLectures)
		lectures.GET("/:id", c.Lectures.GetLecture)
		lectures.GET("/:id/attendance", c.Lectures.GetLectureAttendance)
		lectures.POST("", c.Lectures.CreateLecture)
		lectures.PUT("/:id/attendance", c.Lectures.MarkAttendance)
		lectures.DELETE("/:id", c.Lectures.DeleteLecture)
	}

	dashboard := authenticated.Group("/dashboard")
	{
		dashboard.GET("/faculty", authMiddleware.RoleRequired(models.RoleFaculty, models.RoleHOD), c.Dashboards.Faculty)
		dashboard.GET("/hod", c.Dashboards.HOD)
		dashboard.GET("/admin", authMiddleware.RoleRequired(models.RoleSuperAdmin, models.RoleDeveloper), c.Dashboards.Admin)
		dashboard.GET("/developer", authMiddleware.RoleRequired(models.RoleSuperAdmin, models.RoleDeveloper), c.Dashboards.Developer)
	}

	// Live feed
	authenticated.GET("/ws/departments/:id/attendance", c.Feed.WatchDepartment)
}

// SetupHealth registers the liveness probe
func SetupHealth(router *gin.Engine, version string) {
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "version": version})
	})
}
