package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"trainhub/backend/certificates"
	"trainhub/backend/config"
	"trainhub/backend/models"
	"trainhub/backend/utils"
)

type CertificatesController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Registry *certificates.SendRegistry
}

func NewCertificatesController(db *gorm.DB, cfg *config.Config) *CertificatesController {
	return &CertificatesController{
		DB:       db,
		Cfg:      cfg,
		Registry: certificates.NewSendRegistry(),
	}
}

// GetAllStats godoc
// @Summary Certificate stats for every batch
// @Tags certificates
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security ApiKeyAuth
// @Router /batches/batch-certificates/stats/ [get]
func (cc *CertificatesController) GetAllStats(c *fiber.Ctx) error {
	var batches []models.Batch
	if err := cc.DB.Preload("Users").Order("id ASC").Find(&batches).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	data := make([]fiber.Map, 0, len(batches))
	for _, b := range batches {
		stats, err := cc.statsFor(&b)
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
		data = append(data, cc.withAffordance(&b, stats))
	}

	return c.JSON(fiber.Map{"data": data})
}

// GetBatchStats godoc
// @Summary Certificate stats for one batch
// @Tags certificates
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /batches/batch-certificates/stats/{batchId} [get]
func (cc *CertificatesController) GetBatchStats(c *fiber.Ctx) error {
	batchID, err := strconv.Atoi(c.Params("batchId"))
	if err != nil {
		return utils.BadRequest(c, "Invalid batch ID")
	}

	var batch models.Batch
	if err := cc.DB.Preload("Users").First(&batch, batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Batch not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	stats, err := cc.statsFor(&batch)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(cc.withAffordance(&batch, stats))
}

// SendCertificates godoc
// @Summary Issue certificates for a batch's remaining users
// @Description Gated by eligibility; refuses while a send is already running
// @Tags certificates
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /batches/send-certificates/ [post]
func (cc *CertificatesController) SendCertificates(c *fiber.Ctx) error {
	var input struct {
		BatchID interface{} `json:"batchId"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	batchID, ok := utils.NormalizeID(input.BatchID)
	if !ok {
		return utils.BadRequest(c, "Invalid batch ID")
	}

	var batch models.Batch
	if err := cc.DB.Preload("Users").First(&batch, batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Batch not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	stats, err := cc.statsFor(&batch)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	affordance := certificates.DeriveAffordance(batchInfo(&batch), stats, cc.Registry.Sending(batch.ID))
	switch {
	case !affordance.Visible:
		return utils.ValidationError(c, map[string]string{
			"batchId": "batch is not eligible for certificates",
		})
	case affordance.Mode == certificates.ModeAllIssued:
		return utils.Conflict(c, "All certificates already issued")
	case affordance.Mode == certificates.ModeSending:
		return utils.Conflict(c, "Certificate send already in progress for this batch")
	}

	if !cc.Registry.Begin(batch.ID) {
		return utils.Conflict(c, "Certificate send already in progress for this batch")
	}
	defer cc.Registry.End(batch.ID)

	issued := 0
	for _, r := range stats.NotIssued {
		cert := models.BatchCertificate{
			BatchID:  batch.ID,
			UserID:   r.ID,
			Serial:   uuid.NewString(),
			IssuedAt: time.Now(),
		}
		if err := cc.DB.Create(&cert).Error; err != nil {
			return utils.InternalServerError(c, "Could not issue certificates")
		}
		issued++
	}

	return c.JSON(fiber.Map{
		"message": "Certificates sent",
		"issued":  issued,
	})
}

// statsFor builds the per-batch breakdown from issued certificate rows and
// the batch's current user set.
func (cc *CertificatesController) statsFor(batch *models.Batch) (*certificates.Stats, error) {
	var certs []models.BatchCertificate
	if err := cc.DB.Where("batch_id = ?", batch.ID).Find(&certs).Error; err != nil {
		return nil, err
	}

	issuedTo := make(map[uint]bool, len(certs))
	for _, cert := range certs {
		issuedTo[cert.UserID] = true
	}

	stats := &certificates.Stats{
		BatchID:   batch.ID,
		Issued:    []certificates.Recipient{},
		NotIssued: []certificates.Recipient{},
	}
	for _, u := range batch.Users {
		r := certificates.Recipient{ID: u.ID, Name: displayName(u), Email: u.Email}
		if issuedTo[u.ID] {
			stats.Issued = append(stats.Issued, r)
		} else {
			stats.NotIssued = append(stats.NotIssued, r)
		}
	}

	stats.TotalUsers = len(batch.Users)
	stats.IssuedCount = len(stats.Issued)
	stats.NotIssuedCount = len(stats.NotIssued)
	return stats, nil
}

func (cc *CertificatesController) withAffordance(batch *models.Batch, stats *certificates.Stats) fiber.Map {
	affordance := certificates.DeriveAffordance(batchInfo(batch), stats, cc.Registry.Sending(batch.ID))
	return fiber.Map{
		"batchId":        stats.BatchID,
		"batchName":      batch.Name,
		"totalUsers":     stats.TotalUsers,
		"issuedCount":    stats.IssuedCount,
		"notIssuedCount": stats.NotIssuedCount,
		"issued":         stats.Issued,
		"notIssued":      stats.NotIssued,
		"affordance":     affordance,
	}
}

func batchInfo(batch *models.Batch) certificates.BatchInfo {
	return certificates.BatchInfo{
		ID:              batch.ID,
		CourseCompleted: batch.MarkedCompleted,
		UserCount:       len(batch.Users),
	}
}
