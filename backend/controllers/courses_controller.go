package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"trainhub/backend/config"
	"trainhub/backend/models"
	"trainhub/backend/pagination"
	"trainhub/backend/progress"
	"trainhub/backend/utils"
)

type CoursesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewCoursesController(db *gorm.DB, cfg *config.Config) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg}
}

func (cc *CoursesController) GetCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := cc.DB.Preload("Modules.Lessons.Topics").Find(&courses).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(courses))
	for _, course := range courses {
		h := progress.BuildHierarchy(&course)
		modules, lessons, topics := h.Totals()
		result = append(result, fiber.Map{
			"id":      course.ID,
			"title":   course.Title,
			"modules": modules,
			"lessons": lessons,
			"topics":  topics,
		})
	}

	return c.JSON(fiber.Map{"courses": result})
}

func (cc *CoursesController) GetCourseDetails(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.
		Preload("Modules", orderBySequence).
		Preload("Modules.Lessons", orderBySequence).
		Preload("Modules.Lessons.Topics", orderBySequence).
		First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"course": course})
}

func orderBySequence(db *gorm.DB) *gorm.DB {
	return db.Order("sequence_order ASC")
}

// CreateCourse accepts a full nested curriculum in one request.
func (cc *CoursesController) CreateCourse(c *fiber.Ctx) error {
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Modules     []struct {
			Title   string `json:"title"`
			Lessons []struct {
				Title  string   `json:"title"`
				Topics []string `json:"topics"`
			} `json:"lessons"`
		} `json:"modules"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Title == "" {
		return utils.ValidationError(c, map[string]string{"title": "title is required"})
	}

	course := models.Course{
		Title:       input.Title,
		Description: input.Description,
	}
	for mi, m := range input.Modules {
		module := models.CourseModule{Title: m.Title, SequenceOrder: mi + 1}
		for li, l := range m.Lessons {
			lesson := models.Lesson{Title: l.Title, SequenceOrder: li + 1}
			for ti, t := range l.Topics {
				lesson.Topics = append(lesson.Topics, models.Topic{Title: t, SequenceOrder: ti + 1})
			}
			module.Lessons = append(module.Lessons, lesson)
		}
		course.Modules = append(course.Modules, module)
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		return utils.InternalServerError(c, "Could not create course")
	}

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"course": course})
}

// GetCourseProfessors lists a course's professors, filtered and paged.
func (cc *CoursesController) GetCourseProfessors(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var course models.Course
	if err := cc.DB.Preload("Professors").First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	search := strings.ToLower(c.Query("search"))
	professors := pagination.Filter(course.Professors, func(u models.User) bool {
		if search == "" {
			return true
		}
		return strings.Contains(strings.ToLower(u.FullName), search) ||
			strings.Contains(strings.ToLower(u.Username), search)
	})

	page := pagination.Paginate(professors, c.QueryInt("page", 1), c.QueryInt("pageSize", pagination.DefaultPageSize))

	result := make([]fiber.Map, 0, len(page.Items))
	for _, u := range page.Items {
		result = append(result, fiber.Map{
			"id":    u.ID,
			"name":  u.FullName,
			"email": u.Email,
		})
	}

	return utils.Paginated(c, result, page.Total, page.Page, page.PageSize, page.TotalPages)
}
