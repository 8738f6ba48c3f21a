package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/http/response"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/services"
)

type PrelaunchHandler struct {
	log              *logger.Logger
	prelaunchService services.PrelaunchService
}

func NewPrelaunchHandler(log *logger.Logger, prelaunchService services.PrelaunchService) *PrelaunchHandler {
	return &PrelaunchHandler{log: log.With("handler", "PrelaunchHandler"), prelaunchService: prelaunchService}
}

type campaignRequest struct {
	Title                 string     `json:"title" binding:"required"`
	Slug                  string     `json:"slug"`
	Description           string     `json:"description"`
	StartDate             *time.Time `json:"start_date"`
	EndDate               *time.Time `json:"end_date"`
	IsActive              bool       `json:"is_active"`
	LeadMagnetTitle       string     `json:"lead_magnet_title"`
	LeadMagnetDescription string     `json:"lead_magnet_description"`
	LeadMagnetFileURL     string     `json:"lead_magnet_file_url"`
	HeaderImageURL        string     `json:"header_image_url"`
	Content               string     `json:"content"`
	CTAText               string     `json:"cta_text"`
	CTAURL                string     `json:"cta_url"`
	EarlyBirdPrice        *int       `json:"early_bird_price"`
	RegularPrice          *int       `json:"regular_price"`
	MaxEnrollments        *int       `json:"max_enrollments"`
}

type campaignPatchRequest struct {
	Title                 *string    `json:"title"`
	Slug                  *string    `json:"slug"`
	Description           *string    `json:"description"`
	StartDate             *time.Time `json:"start_date"`
	EndDate               *time.Time `json:"end_date"`
	IsActive              *bool      `json:"is_active"`
	LeadMagnetTitle       *string    `json:"lead_magnet_title"`
	LeadMagnetDescription *string    `json:"lead_magnet_description"`
	LeadMagnetFileURL     *string    `json:"lead_magnet_file_url"`
	HeaderImageURL        *string    `json:"header_image_url"`
	Content               *string    `json:"content"`
	CTAText               *string    `json:"cta_text"`
	CTAURL                *string    `json:"cta_url"`
	EarlyBirdPrice        *int       `json:"early_bird_price"`
	RegularPrice          *int       `json:"regular_price"`
	MaxEnrollments        *int       `json:"max_enrollments"`
}

type campaignCourseRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
}

type campaignStatsRequest struct {
	Views   int64 `json:"view_count"`
	Signups int64 `json:"signup_count"`
}

type subscribeRequest struct {
	CampaignID   uuid.UUID      `json:"campaign_id" binding:"required"`
	Email        string         `json:"email" binding:"required"`
	Name         string         `json:"name"`
	Source       string         `json:"source"`
	Referrer     string         `json:"referrer"`
	CustomFields map[string]any `json:"custom_fields"`
}

type unsubscribeRequest struct {
	CampaignID uuid.UUID `json:"campaign_id" binding:"required"`
	Email      string    `json:"email" binding:"required"`
}

type sequenceRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

type sequencePatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type emailRequest struct {
	Subject   string `json:"subject" binding:"required"`
	Body      string `json:"body" binding:"required"`
	DelayDays int    `json:"delay_days"`
	IsActive  bool   `json:"is_active"`
}

type emailPatchRequest struct {
	Subject   *string `json:"subject"`
	Body      *string `json:"body"`
	DelayDays *int    `json:"delay_days"`
	IsActive  *bool   `json:"is_active"`
}

type emailStatsRequest struct {
	Sent    int64 `json:"sent"`
	Opened  int64 `json:"opened"`
	Clicked int64 `json:"clicked"`
}

type campaignView struct {
	*types.PrelaunchCampaign
	Courses         []*types.Course                 `json:"courses"`
	EmailSequences  []*types.PrelaunchEmailSequence `json:"email_sequences"`
	SubscriberCount int64                           `json:"subscribers_count"`
}

func renderCampaign(c *gin.Context, v *services.CampaignView) {
	response.RespondOK(c, gin.H{"campaign": campaignView{
		PrelaunchCampaign: v.Campaign,
		Courses:           v.Courses,
		EmailSequences:    v.Sequences,
		SubscriberCount:   v.SubscriberCount,
	}})
}

// GET /prelaunch/campaigns?active=&offset=&limit=
func (h *PrelaunchHandler) ListCampaigns(c *gin.Context) {
	offset, limit, ok := page(c)
	if !ok {
		return
	}
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	campaigns, err := h.prelaunchService.ListCampaigns(dbcOf(c), active != nil && *active, offset, limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"campaigns": campaigns})
}

// POST /prelaunch/campaigns
func (h *PrelaunchHandler) CreateCampaign(c *gin.Context) {
	var req campaignRequest
	if !bindJSON(c, &req) {
		return
	}
	campaign, err := h.prelaunchService.CreateCampaign(dbcOf(c), services.CampaignInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"campaign": campaign})
}

// GET /prelaunch/campaigns/:id
func (h *PrelaunchHandler) GetCampaign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := h.prelaunchService.GetCampaign(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	renderCampaign(c, v)
}

// GET /prelaunch/campaigns/slug/:slug
func (h *PrelaunchHandler) GetCampaignBySlug(c *gin.Context) {
	v, err := h.prelaunchService.GetCampaignBySlug(dbcOf(c), c.Param("slug"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	renderCampaign(c, v)
}

// PATCH /prelaunch/campaigns/:id
func (h *PrelaunchHandler) UpdateCampaign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req campaignPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	campaign, err := h.prelaunchService.UpdateCampaign(dbcOf(c), id, services.CampaignPatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"campaign": campaign})
}

// DELETE /prelaunch/campaigns/:id
func (h *PrelaunchHandler) DeleteCampaign(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.prelaunchService.DeleteCampaign(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /prelaunch/campaigns/:id/courses
func (h *PrelaunchHandler) AddCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req campaignCourseRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.prelaunchService.AddCourse(dbcOf(c), id, req.CourseID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /prelaunch/campaigns/:id/courses/:courseId
func (h *PrelaunchHandler) RemoveCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	if err := h.prelaunchService.RemoveCourse(dbcOf(c), id, courseID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /prelaunch/courses/:courseId/campaigns
func (h *PrelaunchHandler) CampaignsForCourse(c *gin.Context) {
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	campaigns, err := h.prelaunchService.CampaignsForCourse(dbcOf(c), courseID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"campaigns": campaigns})
}

// POST /prelaunch/campaigns/:id/stats
func (h *PrelaunchHandler) RecordCampaignStats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req campaignStatsRequest
	if !bindJSON(c, &req) {
		return
	}
	campaign, err := h.prelaunchService.RecordCampaignStats(dbcOf(c), id, req.Views, req.Signups)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"campaign": campaign})
}

// POST /prelaunch/subscribe
func (h *PrelaunchHandler) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.prelaunchService.Subscribe(dbcOf(c), services.SubscribeInput{
		CampaignID:   req.CampaignID,
		Email:        req.Email,
		Name:         req.Name,
		Source:       req.Source,
		Referrer:     req.Referrer,
		CustomFields: req.CustomFields,
		IPAddress:    c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"subscriber": sub})
}

// POST /prelaunch/unsubscribe
func (h *PrelaunchHandler) Unsubscribe(c *gin.Context) {
	var req unsubscribeRequest
	if !bindJSON(c, &req) {
		return
	}
	sub, err := h.prelaunchService.Unsubscribe(dbcOf(c), req.CampaignID, req.Email)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"subscriber": sub})
}

// GET /prelaunch/campaigns/:id/subscribers?active=&offset=&limit=
func (h *PrelaunchHandler) ListSubscribers(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	offset, limit, ok := page(c)
	if !ok {
		return
	}
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	subs, total, err := h.prelaunchService.ListSubscribers(dbcOf(c), id, repos.SubscriberFilter{
		ActiveOnly: active != nil && *active,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"subscribers": subs, "total": total})
}

// POST /prelaunch/subscribers/:id/lead-magnet-sent
func (h *PrelaunchHandler) MarkLeadMagnetSent(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	sub, err := h.prelaunchService.MarkLeadMagnetSent(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"subscriber": sub})
}

// GET /prelaunch/campaigns/:id/sequences
func (h *PrelaunchHandler) ListSequences(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	seqs, err := h.prelaunchService.ListSequences(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sequences": seqs})
}

// POST /prelaunch/campaigns/:id/sequences
func (h *PrelaunchHandler) CreateSequence(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req sequenceRequest
	if !bindJSON(c, &req) {
		return
	}
	seq, err := h.prelaunchService.CreateSequence(dbcOf(c), id, services.SequenceInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"sequence": seq})
}

// GET /prelaunch/sequences/:id
func (h *PrelaunchHandler) GetSequence(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := h.prelaunchService.GetSequence(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sequence": v.Sequence, "emails": v.Emails})
}

// PATCH /prelaunch/sequences/:id
func (h *PrelaunchHandler) UpdateSequence(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req sequencePatchRequest
	if !bindJSON(c, &req) {
		return
	}
	seq, err := h.prelaunchService.UpdateSequence(dbcOf(c), id, services.SequencePatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sequence": seq})
}

// DELETE /prelaunch/sequences/:id
func (h *PrelaunchHandler) DeleteSequence(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.prelaunchService.DeleteSequence(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /prelaunch/sequences/:id/emails
func (h *PrelaunchHandler) ListEmails(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	emails, err := h.prelaunchService.ListEmails(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"emails": emails})
}

// POST /prelaunch/sequences/:id/emails
func (h *PrelaunchHandler) CreateEmail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req emailRequest
	if !bindJSON(c, &req) {
		return
	}
	email, err := h.prelaunchService.CreateEmail(dbcOf(c), id, services.EmailInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"email": email})
}

// GET /prelaunch/emails/:id
func (h *PrelaunchHandler) GetEmail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	email, err := h.prelaunchService.GetEmail(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"email": email})
}

// PATCH /prelaunch/emails/:id
func (h *PrelaunchHandler) UpdateEmail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req emailPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	email, err := h.prelaunchService.UpdateEmail(dbcOf(c), id, services.EmailPatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"email": email})
}

// DELETE /prelaunch/emails/:id
func (h *PrelaunchHandler) DeleteEmail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.prelaunchService.DeleteEmail(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /prelaunch/emails/:id/stats
func (h *PrelaunchHandler) RecordEmailStats(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req emailStatsRequest
	if !bindJSON(c, &req) {
		return
	}
	email, err := h.prelaunchService.RecordEmailStats(dbcOf(c), id, req.Sent, req.Opened, req.Clicked)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"email": email})
}
