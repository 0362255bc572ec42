package routes

import (
	"horarios_go/controllers"
	"horarios_go/middleware"
	"horarios_go/services"
	"horarios_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, wsHub *websocket.Hub, timetableService *services.TimetableService, archiveService *services.ArchiveService) {
	// Initialize controllers
	authController := &controllers.AuthController{}
	teacherController := &controllers.TeacherController{}
	subjectController := &controllers.SubjectController{}
	groupController := &controllers.CourseGroupController{}
	roomController := &controllers.RoomController{}
	requirementController := &controllers.RequirementController{}
	logController := &controllers.LogController{}
	settingsController := controllers.NewSettingsController()
	timetableController := controllers.NewTimetableController(timetableService, archiveService)
	wsController := controllers.NewWebSocketController(wsHub)
	healthController := controllers.NewHealthController(services.NewHealthService("Horarios API", "1.0.0"))

	// API group
	api := app.Group("/api")

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Get("/profile", middleware.JWTMiddleware(), authController.GetProfile)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	protected.Get("/profile", authController.GetProfile)
	protected.Put("/profile/password", authController.ChangePassword)
	protected.Post("/auth/logout", authController.Logout)

	// User management (admin only)
	users := protected.Group("/users", middleware.RequireAdmin())
	users.Post("/", authController.Register)
	users.Post("/:id/reset-password", authController.ResetTeacherPassword)

	// Teacher management
	teachers := protected.Group("/teachers")
	teachers.Get("/", teacherController.GetTeachers)
	teachers.Get("/:id", teacherController.GetTeacher)
	teachers.Post("/", middleware.RequireAdmin(), teacherController.CreateTeacher)
	teachers.Put("/:id", middleware.RequireAdmin(), teacherController.UpdateTeacher)
	teachers.Delete("/:id", middleware.RequireAdmin(), teacherController.DeleteTeacher)

	// Subject management
	subjects := protected.Group("/subjects")
	subjects.Get("/", subjectController.GetSubjects)
	subjects.Get("/:id", subjectController.GetSubject)
	subjects.Post("/", middleware.RequireAdmin(), subjectController.CreateSubject)
	subjects.Put("/:id", middleware.RequireAdmin(), subjectController.UpdateSubject)
	subjects.Delete("/:id", middleware.RequireAdmin(), subjectController.DeleteSubject)

	// Course group management
	groups := protected.Group("/course-groups")
	groups.Get("/", groupController.GetCourseGroups)
	groups.Get("/:id", groupController.GetCourseGroup)
	groups.Post("/", middleware.RequireAdmin(), groupController.CreateCourseGroup)
	groups.Put("/:id", middleware.RequireAdmin(), groupController.UpdateCourseGroup)
	groups.Delete("/:id", middleware.RequireAdmin(), groupController.DeleteCourseGroup)

	// Room management
	rooms := protected.Group("/rooms")
	rooms.Get("/", roomController.GetRooms)
	rooms.Get("/:id", roomController.GetRoom)
	rooms.Post("/", middleware.RequireAdmin(), roomController.CreateRoom)
	rooms.Put("/:id", middleware.RequireAdmin(), roomController.UpdateRoom)
	rooms.Delete("/:id", middleware.RequireAdmin(), roomController.DeleteRoom)

	// Requirement management
	requirements := protected.Group("/requirements")
	requirements.Get("/", requirementController.GetRequirements)
	requirements.Get("/:id", requirementController.GetRequirement)
	requirements.Post("/", middleware.RequireAdmin(), requirementController.CreateRequirement)
	requirements.Put("/:id", middleware.RequireAdmin(), requirementController.UpdateRequirement)
	requirements.Delete("/:id", middleware.RequireAdmin(), requirementController.DeleteRequirement)

	// Timetable operations
	timetable := protected.Group("/timetable")
	timetable.Post("/generate", middleware.RequireAdmin(), timetableController.GenerateAll)
	timetable.Post("/generate/:id", middleware.RequireAdmin(), timetableController.GenerateForGroup)
	timetable.Put("/assignments/:id/move", middleware.RequireAdmin(), timetableController.MoveAssignment)
	timetable.Get("/groups/:id", timetableController.GetGroupTimetable)
	timetable.Get("/teachers/:id", timetableController.GetTeacherTimetable)
	timetable.Get("/my", timetableController.GetMyTimetable)
	timetable.Get("/substitutes", timetableController.FindSubstitutes)
	timetable.Get("/export", timetableController.ExportTimetable)
	timetable.Delete("/", middleware.RequireAdmin(), timetableController.ResetTimetable)

	// Snapshot archive
	snapshots := protected.Group("/snapshots", middleware.RequireAdmin())
	snapshots.Get("/", timetableController.ListSnapshots)
	snapshots.Post("/", timetableController.TriggerSnapshot)
	snapshots.Get("/:id/download", timetableController.DownloadSnapshot)

	// Reports
	reports := protected.Group("/reports")
	reports.Get("/workload", timetableController.GetWorkloadReport)

	// Settings
	settings := protected.Group("/settings")
	settings.Get("/preferences", settingsController.GetTimetablePreferences)
	settings.Put("/preferences", middleware.RequireAdmin(), settingsController.UpdateTimetablePreferences)
	settings.Get("/institution", settingsController.GetInstitution)
	settings.Put("/institution", middleware.RequireAdmin(), settingsController.UpdateInstitution)
	settings.Post("/institution/logo", middleware.RequireAdmin(), settingsController.UploadLogo)

	// Activity logs (admin only)
	logs := protected.Group("/logs", middleware.RequireAdmin())
	logs.Get("/", logController.GetLogs)
	logs.Get("/stats", logController.GetLogStats)

	// Health
	api.Get("/health", healthController.GetHealthStatus)

	// WebSocket routes
	ws := protected.Group("/ws")
	ws.Get("/stats", middleware.RequireAdmin(), wsController.GetWebSocketStats)

	// WebSocket connection endpoint - use websocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", wsController.WebSocketHandler())
}

// SetupStaticRoutes configures static file serving
func SetupStaticRoutes(app *fiber.App) {
	app.Static("/", "./public")
}
