package controllers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"trainhub/backend/config"
	"trainhub/backend/enrollment"
	"trainhub/backend/models"
	"trainhub/backend/pagination"
	"trainhub/backend/progress"
	"trainhub/backend/utils"
)

type BatchesController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewBatchesController(db *gorm.DB, cfg *config.Config) *BatchesController {
	return &BatchesController{DB: db, Cfg: cfg}
}

// batchInput is the create/edit request body. Identifier fields accept both
// bare ids and object-wrapped references; completion lists may nest
// sub-documents, all of it normalized before anything is persisted.
type batchInput struct {
	BatchName       string        `json:"batchName"`
	Course          interface{}   `json:"course"`
	Users           []interface{} `json:"users"`
	Professor       interface{}   `json:"professor"`
	StartDate       string        `json:"startDate"`
	EndDate         string        `json:"endDate"`
	Quizzes         []interface{} `json:"quizzes"`
	Events          []interface{} `json:"events"`
	MarkAsCompleted bool          `json:"markAsCompleted"`
	progress.CompletionPayload
}

// GetBatches godoc
// @Summary List batches
// @Description Returns batches with optional name search and paging
// @Tags batches
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /batches [get]
func (bc *BatchesController) GetBatches(c *fiber.Ctx) error {
	var batches []models.Batch
	if err := bc.DB.Preload("Users").Order("id ASC").Find(&batches).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	search := strings.ToLower(c.Query("search"))
	filtered := pagination.Filter(batches, func(b models.Batch) bool {
		return search == "" || strings.Contains(strings.ToLower(b.Name), search)
	})

	page := pagination.Paginate(filtered, c.QueryInt("page", 1), c.QueryInt("pageSize", pagination.DefaultPageSize))

	result := make([]fiber.Map, 0, len(page.Items))
	for _, b := range page.Items {
		result = append(result, bc.serializeBatch(&b))
	}

	return c.JSON(fiber.Map{
		"batches":    result,
		"total":      page.Total,
		"page":       page.Page,
		"pageSize":   page.PageSize,
		"totalPages": page.TotalPages,
	})
}

// GetBatchDetails godoc
// @Summary Get one batch
// @Description Returns a batch with its computed progress detail
// @Tags batches
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /batches/{id} [get]
func (bc *BatchesController) GetBatchDetails(c *fiber.Ctx) error {
	batchID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid batch ID")
	}

	var batch models.Batch
	if err := bc.DB.Preload("Users").First(&batch, batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Batch not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	summary, marks, err := bc.batchProgress(&batch)
	if err != nil {
		return utils.InternalServerError(c, "Could not compute progress")
	}

	payload := bc.serializeBatch(&batch)
	modules, lessons, topics := marks.IdentifierLists()
	payload["completedModules"] = modules
	payload["completedLessons"] = lessons
	payload["completedTopics"] = topics

	return c.JSON(fiber.Map{
		"batch":    payload,
		"message":  "Batch fetched",
		"progress": summary,
	})
}

// GetBatchUsers lists a batch's assigned users, filtered and paged.
func (bc *BatchesController) GetBatchUsers(c *fiber.Ctx) error {
	batchID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid batch ID")
	}

	var batch models.Batch
	if err := bc.DB.Preload("Users").First(&batch, batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Batch not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	search := strings.ToLower(c.Query("search"))
	users := pagination.Filter(batch.Users, func(u models.User) bool {
		if search == "" {
			return true
		}
		return strings.Contains(strings.ToLower(u.FullName), search) ||
			strings.Contains(strings.ToLower(u.Email), search)
	})

	page := pagination.Paginate(users, c.QueryInt("page", 1), c.QueryInt("pageSize", pagination.DefaultPageSize))

	result := make([]fiber.Map, 0, len(page.Items))
	for _, u := range page.Items {
		result = append(result, fiber.Map{
			"id":    u.ID,
			"name":  displayName(u),
			"email": u.Email,
		})
	}

	return utils.Paginated(c, result, page.Total, page.Page, page.PageSize, page.TotalPages)
}

// GetUserBreakdown godoc
// @Summary Users assigned to and available for a batch
// @Description Merged per-course candidate pool split by assignment
// @Tags batches
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /batches/user-breakdown/{courseId}/{batchId} [get]
func (bc *BatchesController) GetUserBreakdown(c *fiber.Ctx) error {
	courseID, err := strconv.Atoi(c.Params("courseId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}
	batchID, err := strconv.Atoi(c.Params("batchId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid batch ID")
	}

	var batch models.Batch
	if err := bc.DB.Preload("Users").First(&batch, batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Batch not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	pool, err := bc.candidatePool(uint(courseID), &batch)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	assigned := make([]fiber.Map, 0, len(pool))
	available := make([]fiber.Map, 0, len(pool))
	for _, cand := range pool {
		entry := fiber.Map{
			"id":         cand.ID,
			"name":       cand.Name,
			"email":      cand.Email,
			"isAssigned": cand.IsAssigned,
		}
		if cand.IsAssigned {
			assigned = append(assigned, entry)
		} else {
			available = append(available, entry)
		}
	}

	return c.JSON(fiber.Map{
		"breakdown": fiber.Map{
			"assignedToThisBatch": fiber.Map{"users": assigned},
			"availableUsers":      fiber.Map{"users": available},
		},
	})
}

// CreateBatch godoc
// @Summary Create a batch
// @Tags batches
// @Accept json
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /batches [post]
func (bc *BatchesController) CreateBatch(c *fiber.Ctx) error {
	var input batchInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	batch := models.Batch{}
	if verr := bc.applyInput(&batch, &input, nil); verr != nil {
		return utils.ValidationError(c, verr)
	}

	userIDs, verr := bc.resolveUsers(&batch, &input)
	if verr != nil {
		return utils.ValidationError(c, verr)
	}

	if err := bc.DB.Create(&batch).Error; err != nil {
		return utils.InternalServerError(c, "Could not create batch")
	}
	if err := bc.replaceUsers(&batch, userIDs); err != nil {
		return utils.InternalServerError(c, "Could not assign users")
	}

	bc.DB.Preload("Users").First(&batch, batch.ID)
	return utils.Success(c, fiber.StatusCreated, fiber.Map{
		"message": "Batch created",
		"batch":   bc.serializeBatch(&batch),
	})
}

// UpdateBatch godoc
// @Summary Update a batch
// @Description Full edit including completion marks and user assignment
// @Tags batches
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /batches/{id} [put]
func (bc *BatchesController) UpdateBatch(c *fiber.Ctx) error {
	batchID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid batch ID")
	}

	var batch models.Batch
	if err := bc.DB.Preload("Users").First(&batch, batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Batch not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	var input batchInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if verr := bc.applyInput(&batch, &input, &batch); verr != nil {
		return utils.ValidationError(c, verr)
	}

	userIDs, verr := bc.resolveUsers(&batch, &input)
	if verr != nil {
		return utils.ValidationError(c, verr)
	}

	marks := progress.MarkStateFromPayload(input.CompletionPayload)

	err = bc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&batch).Error; err != nil {
			return err
		}
		// Completion marks are replaced wholesale with the normalized set
		if err := tx.Where("batch_id = ?", batch.ID).
			Delete(&models.BatchCompletionMark{}).Error; err != nil {
			return err
		}
		records := marks.Records(batch.ID)
		if len(records) > 0 {
			if err := tx.Create(&records).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not update batch")
	}
	if err := bc.replaceUsers(&batch, userIDs); err != nil {
		return utils.InternalServerError(c, "Could not assign users")
	}

	bc.DB.Preload("Users").First(&batch, batch.ID)
	summary, _, _ := bc.batchProgress(&batch)
	return c.JSON(fiber.Map{
		"message":  "Batch updated",
		"batch":    bc.serializeBatch(&batch),
		"progress": summary,
	})
}

func (bc *BatchesController) DeleteBatch(c *fiber.Ctx) error {
	batchID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid batch ID")
	}

	var batch models.Batch
	if err := bc.DB.First(&batch, batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Batch not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	err = bc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("batch_id = ?", batch.ID).
			Delete(&models.BatchCompletionMark{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&batch).Association("Users").Clear(); err != nil {
			return err
		}
		return tx.Delete(&batch).Error
	})
	if err != nil {
		return utils.InternalServerError(c, "Could not delete batch")
	}

	return c.JSON(fiber.Map{"message": "Batch deleted"})
}

// applyInput validates and copies scalar fields onto the batch. The current
// parameter is non-nil on update, where an omitted course keeps its value.
func (bc *BatchesController) applyInput(batch *models.Batch, input *batchInput, current *models.Batch) map[string]string {
	verrs := map[string]string{}

	if input.BatchName == "" && current == nil {
		verrs["batchName"] = "batch name is required"
	}
	if input.BatchName != "" {
		batch.Name = input.BatchName
	}

	if courseID, ok := utils.NormalizeID(input.Course); ok {
		var course models.Course
		if err := bc.DB.First(&course, courseID).Error; err != nil {
			verrs["course"] = "course does not exist"
		} else {
			batch.CourseID = courseID
		}
	} else if current == nil {
		verrs["course"] = "course is required"
	}

	if professorID, ok := utils.NormalizeID(input.Professor); ok {
		batch.ProfessorID = professorID
	}

	if input.StartDate != "" {
		if t, err := parseDate(input.StartDate); err == nil {
			batch.StartDate = t
		} else {
			verrs["startDate"] = "invalid date"
		}
	}
	if input.EndDate != "" {
		if t, err := parseDate(input.EndDate); err == nil {
			batch.EndDate = t
		} else {
			verrs["endDate"] = "invalid date"
		}
	}
	if !batch.StartDate.IsZero() && !batch.EndDate.IsZero() && batch.EndDate.Before(batch.StartDate) {
		verrs["endDate"] = "end date precedes start date"
	}

	batch.Quizzes = joinIDList(utils.NormalizeIDList(input.Quizzes))
	batch.Events = joinIDList(utils.NormalizeIDList(input.Events))
	batch.MarkedCompleted = input.MarkAsCompleted

	if len(verrs) > 0 {
		return verrs
	}
	return nil
}

// resolveUsers runs the enrollment reconciler over the request's user list:
// normalize the selection, rebuild the candidate pool for the batch's course,
// and reject dangling references before anything is written.
func (bc *BatchesController) resolveUsers(batch *models.Batch, input *batchInput) ([]uint, map[string]string) {
	pool, err := bc.candidatePool(batch.CourseID, batch)
	if err != nil {
		return nil, map[string]string{"users": "could not load candidates"}
	}

	sel := enrollment.NewSelection(input.Users)
	if err := enrollment.Validate(sel, pool); err != nil {
		return nil, map[string]string{"users": err.Error()}
	}

	return sel.IDs(pool), nil
}

// candidatePool merges the batch's assigned users with everyone enrolled in
// the course, deduplicated by the reconciler.
func (bc *BatchesController) candidatePool(courseID uint, batch *models.Batch) ([]enrollment.Candidate, error) {
	var assigned []enrollment.Member
	if batch != nil {
		for _, u := range batch.Users {
			assigned = append(assigned, enrollment.Member{ID: u.ID, Name: displayName(u), Email: u.Email})
		}
	}

	var enrolled []models.User
	err := bc.DB.
		Joins("JOIN enrollments ON enrollments.user_id = users.id").
		Where("enrollments.course_id = ? AND enrollments.deleted_at IS NULL", courseID).
		Order("users.id ASC").
		Find(&enrolled).Error
	if err != nil {
		return nil, err
	}

	available := make([]enrollment.Member, 0, len(enrolled))
	for _, u := range enrolled {
		available = append(available, enrollment.Member{ID: u.ID, Name: displayName(u), Email: u.Email})
	}

	return enrollment.BuildPool(assigned, available), nil
}

func (bc *BatchesController) replaceUsers(batch *models.Batch, userIDs []uint) error {
	users := make([]models.User, 0, len(userIDs))
	for _, id := range userIDs {
		users = append(users, models.User{Model: gorm.Model{ID: id}})
	}
	return bc.DB.Model(batch).Association("Users").Replace(users)
}

func (bc *BatchesController) batchProgress(batch *models.Batch) (progress.BatchProgress, *progress.MarkState, error) {
	var course models.Course
	if err := bc.DB.
		Preload("Modules.Lessons.Topics").
		First(&course, batch.CourseID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return progress.BatchProgress{}, nil, err
	}

	var records []models.BatchCompletionMark
	if err := bc.DB.Where("batch_id = ?", batch.ID).Find(&records).Error; err != nil {
		return progress.BatchProgress{}, nil, err
	}

	h := progress.BuildHierarchy(&course)
	marks := progress.MarkStateFromRecords(records)
	return progress.Summary(h, marks, batch.MarkedCompleted), marks, nil
}

func (bc *BatchesController) serializeBatch(batch *models.Batch) fiber.Map {
	users := make([]fiber.Map, 0, len(batch.Users))
	for _, u := range batch.Users {
		users = append(users, fiber.Map{
			"id":    u.ID,
			"name":  displayName(u),
			"email": u.Email,
		})
	}

	var courseTitle string
	var course models.Course
	if bc.DB.Select("id", "title").First(&course, batch.CourseID).Error == nil {
		courseTitle = course.Title
	}

	return fiber.Map{
		"id":              batch.ID,
		"batchName":       batch.Name,
		"course":          fiber.Map{"id": batch.CourseID, "title": courseTitle},
		"professor":       batch.ProfessorID,
		"startDate":       formatDate(batch.StartDate),
		"endDate":         formatDate(batch.EndDate),
		"users":           users,
		"quizzes":         splitIDList(batch.Quizzes),
		"events":          splitIDList(batch.Events),
		"markAsCompleted": batch.MarkedCompleted,
	}
}

func displayName(u models.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func joinIDList(ids []uint) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ",")
}

func splitIDList(s string) []uint {
	if s == "" {
		return []uint{}
	}
	parts := strings.Split(s, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		if n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64); err == nil {
			ids = append(ids, uint(n))
		}
	}
	return ids
}
