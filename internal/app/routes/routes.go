package routes

import (
	"github.com/acesped/portal/internal/app/controllers"
	"github.com/acesped/portal/internal/app/models"
	"github.com/acesped/portal/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Controllers groups every HTTP handler the router mounts.
type Controllers struct {
	Admission    *controllers.AdmissionController
	Student      *controllers.StudentController
	Registration *controllers.RegistrationController
	Academic     *controllers.AcademicController
	AccessCode   *controllers.AccessCodeController
	Settings     *controllers.SettingsController
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Health       *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl *Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", ctrl.Health.Health)

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.POST("/applications", ctrl.Admission.SubmitApplication)
	v1.GET("/applications/status", ctrl.Admission.GetApplicationStatus)

	showcase := v1.Group("/showcase")
	{
		showcase.GET("", ctrl.AccessCode.Preview)
		showcase.POST("/redeem", ctrl.AccessCode.Redeem)
	}

	auth := v1.Group("/auth")
	{
		auth.POST("/staff/login", ctrl.Auth.StaffLogin)
		auth.POST("/student/login", ctrl.Auth.StudentLogin)
		auth.POST("/logout", ctrl.Auth.Logout)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", ctrl.Auth.Me)

		requires := authMiddleware.RequirePermission

		// Admissions
		authenticated.GET("/applications", requires(models.PermApplicationReview), ctrl.Admission.ListApplications)
		authenticated.POST("/applications/:id/convert", requires(models.PermStudentManage), ctrl.Student.ConvertToStudent)
		authenticated.POST("/applications/:id/graduate", requires(models.PermStudentManage), ctrl.Student.Graduate)

		admissions := authenticated.Group("/admissions/:applicationNumber")
		{
			admissions.PUT("/exercise", requires(models.PermApplicationReview), ctrl.Admission.RecordExercise)
			admissions.GET("/exercise", requires(models.PermApplicationReview), ctrl.Admission.GetExercise)
			admissions.PATCH("/status", requires(models.PermApplicationDecide), ctrl.Admission.SetStatus)
			admissions.POST("/interview-invitation", requires(models.PermApplicationReview), ctrl.Admission.SendInterviewInvitation)
		}

		// Registrations and results. Students act on their own records; the
		// services decide between self access and staff permissions.
		registrations := authenticated.Group("/registrations")
		{
			registrations.POST("", ctrl.Registration.Register)
			registrations.PATCH("/:id/withdraw", ctrl.Registration.Withdraw)
			registrations.PUT("/:id/result", requires(models.PermResultRecord), ctrl.Registration.RecordResult)
		}

		students := authenticated.Group("/students")
		{
			students.GET("/me", authMiddleware.StudentOnly(), ctrl.Student.GetMe)
			students.PUT("/me/personal-info", authMiddleware.StudentOnly(), ctrl.Student.UpdatePersonalInfo)
			students.GET("/:id/registrations", ctrl.Registration.ListForStudent)
			students.GET("/:id/cgpa", ctrl.Registration.GetCGPA)
		}

		// Catalogue
		authenticated.GET("/programs", ctrl.Academic.ListPrograms)
		authenticated.POST("/programs", requires(models.PermCatalogueManage), ctrl.Academic.CreateProgram)
		authenticated.GET("/courses", ctrl.Academic.ListCourses)
		authenticated.POST("/courses", requires(models.PermCatalogueManage), ctrl.Academic.CreateCourse)
		authenticated.POST("/courses/:id/lecturers", requires(models.PermCatalogueManage), ctrl.Academic.AssignLecturer)

		// Settings
		settings := authenticated.Group("/settings")
		{
			settings.GET("/academic-session", ctrl.Settings.GetActiveSession)
			settings.PUT("/academic-session", requires(models.PermSettingsManage), ctrl.Settings.UpdateActiveSession)
			settings.GET("/admission", ctrl.Settings.GetAdmissionSettings)
		}

		// Showcase administration
		authenticated.POST("/access-codes", requires(models.PermAccessCodeManage), ctrl.AccessCode.CreateAccessCode)
		authenticated.PATCH("/access-codes/:code/deactivate", requires(models.PermAccessCodeManage), ctrl.AccessCode.DeactivateAccessCode)
		authenticated.POST("/projects", requires(models.PermAccessCodeManage), ctrl.AccessCode.CreateProject)

		// Staff accounts
		authenticated.POST("/users", requires(models.PermUsersManage), ctrl.User.CreateUser)
	}
}
