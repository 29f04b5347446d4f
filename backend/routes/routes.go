package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"trainhub/backend/config"
	"trainhub/backend/controllers"
	"trainhub/backend/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db, cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/user/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/user/profile", authMiddleware, userController.UpdateProfile)

	// Course routes (read for any authenticated user, create admin-only)
	coursesController := controllers.NewCoursesController(db, cfg)
	courses := app.Group("/api/courses", authMiddleware)
	courses.Get("/", coursesController.GetCourses)
	courses.Get("/:id", coursesController.GetCourseDetails)
	courses.Get("/:id/professors", coursesController.GetCourseProfessors)
	courses.Post("/", adminMiddleware, coursesController.CreateCourse)

	// Batch administration routes
	batchesController := controllers.NewBatchesController(db, cfg)
	certificatesController := controllers.NewCertificatesController(db, cfg)
	batches := app.Group("/api/batches", authMiddleware, adminMiddleware)
	batches.Get("/", batchesController.GetBatches)
	batches.Post("/", batchesController.CreateBatch)
	// Static segments must be registered before the :id routes
	batches.Get("/user-breakdown/:courseId/:batchId", batchesController.GetUserBreakdown)
	batches.Get("/batch-certificates/stats/", certificatesController.GetAllStats)
	batches.Get("/batch-certificates/stats/:batchId", certificatesController.GetBatchStats)
	batches.Post("/send-certificates/", certificatesController.SendCertificates)
	batches.Get("/:id", batchesController.GetBatchDetails)
	batches.Put("/:id", batchesController.UpdateBatch)
	batches.Delete("/:id", batchesController.DeleteBatch)
	batches.Get("/:id/users", batchesController.GetBatchUsers)
}
