package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/config"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/pkg/logger"
	"barangaylink/internal/pkg/pagination"

	"github.com/google/uuid"
)

// CreateRequestInput represents a new service request
type CreateRequestInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Location    string `json:"location" validate:"omitempty,max=255"`
}

// UpdateRequestInput edits a request; empty fields are kept. Priority is
// honoured for staff only.
type UpdateRequestInput struct {
	Title       string `json:"title" validate:"omitempty,max=200"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location" validate:"omitempty,max=255"`
	Priority    string `json:"priority" validate:"omitempty,oneof=URGENT HIGH MEDIUM LOW"`
}

// StatusInput moves a request through its workflow
type StatusInput struct {
	Status string `json:"status" validate:"required,oneof=PENDING IN_PROGRESS RESOLVED REJECTED"`
	Note   string `json:"note" validate:"omitempty,max=1000"`
}

// AssignInput gives a request to a volunteer
type AssignInput struct {
	VolunteerID uint `json:"volunteerId" validate:"required,gt=0"`
}

// Attachment is an uploaded file for a request
type Attachment struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// RequestService handles service requests
type RequestService struct {
	repo          repositories.RequestRepository
	userRepo      repositories.UserRepository
	volunteerRepo repositories.VolunteerRepository
	ai            *AIService
	notifications *NotificationService
	upload        config.UploadConfig
}

// NewRequestService creates a new request service
func NewRequestService(
	repos *repositories.Repositories,
	ai *AIService,
	notifications *NotificationService,
	upload config.UploadConfig,
) *RequestService {
	return &RequestService{
		repo:          repos.Requests,
		userRepo:      repos.Users,
		volunteerRepo: repos.Volunteers,
		ai:            ai,
		notifications: notifications,
		upload:        upload,
	}
}

func validCategory(c string) bool {
	for _, known := range domain.Categories {
		if c == known {
			return true
		}
	}
	return false
}

// List returns requests visible to staff
func (s *RequestService) List(ctx context.Context, filter repositories.RequestFilter, p *pagination.Params) ([]*models.ServiceRequest, int64, error) {
	return s.repo.List(ctx, filter, p.Offset, p.Limit)
}

// Mine returns the caller's own requests
func (s *RequestService) Mine(ctx context.Context, actor Actor, filter repositories.RequestFilter, p *pagination.Params) ([]*models.ServiceRequest, int64, error) {
	filter.RequesterID = actor.UserID
	return s.repo.List(ctx, filter, p.Offset, p.Limit)
}

// Assigned returns requests assigned to the caller as a volunteer
func (s *RequestService) Assigned(ctx context.Context, actor Actor, p *pagination.Params) ([]*models.ServiceRequest, int64, error) {
	return s.repo.List(ctx, repositories.RequestFilter{AssigneeID: actor.UserID}, p.Offset, p.Limit)
}

// Get returns a request the actor may see: staff, requester or assignee
func (s *RequestService) Get(ctx context.Context, actor Actor, id uint) (*models.ServiceRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrRequestNotFound)
	}
	if !s.canView(actor, req) {
		return nil, domain.ErrForbidden
	}
	return req, nil
}

func (s *RequestService) canView(actor Actor, req *models.ServiceRequest) bool {
	if actor.IsStaff() || req.RequesterID == actor.UserID {
		return true
	}
	return req.AssigneeID != nil && *req.AssigneeID == actor.UserID
}

// Create files a request. Its priority comes from the prioritization service
// when that is reachable, otherwise from the category.
func (s *RequestService) Create(ctx context.Context, actor Actor, input *CreateRequestInput) (*models.ServiceRequest, error) {
	category := strings.ToUpper(strings.TrimSpace(input.Category))
	if !validCategory(category) {
		return nil, domain.ErrInvalidCategory
	}

	req := &models.ServiceRequest{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    category,
		Location:    strings.TrimSpace(input.Location),
		Status:      domain.RequestPending,
		RequesterID: actor.UserID,
	}
	s.prioritize(ctx, req)

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	logger.Infof("📝 Request %d filed by user %d [%s/%s]", req.ID, actor.UserID, req.Category, req.Priority)

	if req.Priority == domain.PriorityUrgent {
		s.notifications.NotifyRoles(ctx, []domain.Role{domain.RoleAdmin, domain.RoleModerator},
			domain.NotifyRequestUpdate, "Urgent request filed", req.Title, fmt.Sprintf("/requests/%d", req.ID))
	}
	return req, nil
}

func (s *RequestService) prioritize(ctx context.Context, req *models.ServiceRequest) {
	req.Priority = domain.DefaultPriority(req.Category)
	if s.ai == nil || !s.ai.PriorityEnabled() {
		return
	}

	result, err := s.ai.Prioritize(ctx, PriorityInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
	})
	if err != nil {
		logger.Warnf("⚠️ Prioritization unavailable, using category default: %v", err)
		return
	}

	switch result.Priority {
	case domain.PriorityUrgent, domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow:
		req.Priority = result.Priority
	}
	score := result.Score
	req.AIScore = &score
	req.AIReason = result.Reason
}

// Update edits a request. Requesters may edit their own pending requests;
// staff may edit any request and override its priority.
func (s *RequestService) Update(ctx context.Context, actor Actor, id uint, input *UpdateRequestInput) (*models.ServiceRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrRequestNotFound)
	}
	if !actor.IsStaff() && (req.RequesterID != actor.UserID || req.Status != domain.RequestPending) {
		return nil, domain.ErrForbidden
	}

	if v := strings.TrimSpace(input.Title); v != "" {
		req.Title = v
	}
	if v := strings.TrimSpace(input.Description); v != "" {
		req.Description = v
	}
	if v := strings.TrimSpace(input.Location); v != "" {
		req.Location = v
	}
	if v := strings.ToUpper(strings.TrimSpace(input.Category)); v != "" {
		if !validCategory(v) {
			return nil, domain.ErrInvalidCategory
		}
		req.Category = v
	}
	if input.Priority != "" && actor.IsStaff() {
		req.Priority = input.Priority
	}

	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Delete removes a request. Requesters may delete their own pending requests;
// admins may delete any.
func (s *RequestService) Delete(ctx context.Context, actor Actor, id uint) error {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFound(err, domain.ErrRequestNotFound)
	}
	if !actor.IsAdmin() && (req.RequesterID != actor.UserID || req.Status != domain.RequestPending) {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// UpdateStatus moves a request through its workflow. Staff, or the assigned
// volunteer, only.
func (s *RequestService) UpdateStatus(ctx context.Context, actor Actor, id uint, input *StatusInput) (*models.ServiceRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrRequestNotFound)
	}
	assignee := req.AssigneeID != nil && *req.AssigneeID == actor.UserID
	if !actor.IsStaff() && !assignee {
		return nil, domain.ErrForbidden
	}
	if req.Status == input.Status || !domain.CanTransition(req.Status, input.Status) {
		return nil, domain.ErrInvalidTransition
	}

	req.Status = input.Status
	req.StatusNote = strings.TrimSpace(input.Note)
	if input.Status == domain.RequestResolved {
		now := time.Now()
		req.ResolvedAt = &now
	} else {
		req.ResolvedAt = nil
	}

	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Your request %q is now %s", req.Title, humanStatus(req.Status))
	if req.StatusNote != "" {
		msg += ": " + req.StatusNote
	}
	s.notifications.Notify(ctx, req.RequesterID, domain.NotifyRequestUpdate, "Request updated", msg, fmt.Sprintf("/requests/%d", req.ID))
	return req, nil
}

// Assign gives a request to an approved volunteer and moves it in progress
func (s *RequestService) Assign(ctx context.Context, actor Actor, id uint, input *AssignInput) (*models.ServiceRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrRequestNotFound)
	}
	if req.Status == domain.RequestResolved || req.Status == domain.RequestRejected {
		return nil, domain.ErrInvalidTransition
	}

	profile, err := s.volunteerRepo.GetByUserID(ctx, input.VolunteerID)
	if err != nil {
		return nil, notFound(err, domain.ErrNotAVolunteer)
	}
	if profile.Status != domain.VolunteerApproved {
		return nil, domain.ErrNotAVolunteer
	}

	volunteerID := input.VolunteerID
	req.AssigneeID = &volunteerID
	req.Status = domain.RequestInProgress
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}

	link := fmt.Sprintf("/requests/%d", req.ID)
	s.notifications.Notify(ctx, volunteerID, domain.NotifyAssignment, "New assignment", req.Title, link)
	s.notifications.Notify(ctx, req.RequesterID, domain.NotifyRequestUpdate, "Request updated",
		fmt.Sprintf("A volunteer has been assigned to %q", req.Title), link)

	logger.Infof("🙋 Request %d assigned to volunteer %d by %d", req.ID, volunteerID, actor.UserID)
	return req, nil
}

// AttachFile stores an upload under the upload directory and records its path
func (s *RequestService) AttachFile(ctx context.Context, actor Actor, id uint, file Attachment) (*models.ServiceRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, domain.ErrRequestNotFound)
	}
	if !s.canView(actor, req) {
		return nil, domain.ErrForbidden
	}
	if s.upload.MaxBytes > 0 && file.Size > int64(s.upload.MaxBytes) {
		return nil, domain.ErrAttachmentTooLarge
	}

	dir := filepath.Join(s.upload.Dir, "requests", fmt.Sprint(req.ID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	name := uuid.New().String() + strings.ToLower(filepath.Ext(filepath.Base(file.Filename)))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	limit := int64(s.upload.MaxBytes)
	if limit <= 0 {
		limit = 1 << 62
	}
	n, copyErr := io.Copy(dst, io.LimitReader(file.Content, limit+1))
	closeErr := dst.Close()
	if copyErr == nil && n > limit {
		copyErr = domain.ErrAttachmentTooLarge
	}
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(filepath.Join(dir, name))
		if copyErr != nil {
			return nil, copyErr
		}
		return nil, closeErr
	}

	req.Attachments = append(req.Attachments, fmt.Sprintf("/uploads/requests/%d/%s", req.ID, name))
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func humanStatus(status string) string {
	return strings.ToLower(strings.ReplaceAll(status, "_", " "))
}
