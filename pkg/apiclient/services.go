package apiclient

import (
	"context"
	"fmt"
)

// Services groups the per-resource call sets over one Client.
type Services struct {
	Auth          *AuthService
	Requests      *RequestService
	Events        *EventService
	Donations     *DonationService
	Volunteers    *VolunteerService
	Admin         *AdminService
	Announcements *AnnouncementService
	AI            *AIService
	Notifications *NotificationService
	Emergency     *EmergencyService
}

// NewServices builds every call group over c.
func NewServices(c *Client) *Services {
	return &Services{
		Auth:          &AuthService{c: c},
		Requests:      &RequestService{c: c},
		Events:        &EventService{c: c},
		Donations:     &DonationService{c: c},
		Volunteers:    &VolunteerService{c: c},
		Admin:         &AdminService{c: c},
		Announcements: &AnnouncementService{c: c},
		AI:            &AIService{c: c},
		Notifications: &NotificationService{c: c},
		Emergency:     &EmergencyService{c: c},
	}
}

// RequestService wraps /requests.
type RequestService struct {
	c *Client
}

// List returns requests visible to the caller. Filters: status, category,
// priority, search.
func (s *RequestService) List(ctx context.Context, q PageQuery) (*Page[ServiceRequest], error) {
	return GetPage[ServiceRequest](ctx, s.c, "/requests", q)
}

// Mine returns the caller's own requests.
func (s *RequestService) Mine(ctx context.Context, q PageQuery) (*Page[ServiceRequest], error) {
	return GetPage[ServiceRequest](ctx, s.c, "/requests/my", q)
}

func (s *RequestService) Get(ctx context.Context, id uint) (*ServiceRequest, error) {
	var out ServiceRequest
	if err := s.c.Get(ctx, fmt.Sprintf("/requests/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RequestService) Create(ctx context.Context, in ServiceRequestInput) (*ServiceRequest, error) {
	var out ServiceRequest
	if err := s.c.Post(ctx, "/requests", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RequestService) Update(ctx context.Context, id uint, in ServiceRequestInput) (*ServiceRequest, error) {
	var out ServiceRequest
	if err := s.c.Put(ctx, fmt.Sprintf("/requests/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RequestService) Delete(ctx context.Context, id uint) error {
	return s.c.Delete(ctx, fmt.Sprintf("/requests/%d", id), nil)
}

// UpdateStatus moves a request through its workflow. Staff only.
func (s *RequestService) UpdateStatus(ctx context.Context, id uint, status, note string) (*ServiceRequest, error) {
	body := map[string]string{"status": status, "note": note}
	var out ServiceRequest
	if err := s.c.Patch(ctx, fmt.Sprintf("/requests/%d/status", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Assign gives a request to a volunteer. Staff only.
func (s *RequestService) Assign(ctx context.Context, id, volunteerID uint) (*ServiceRequest, error) {
	body := map[string]uint{"volunteerId": volunteerID}
	var out ServiceRequest
	if err := s.c.Post(ctx, fmt.Sprintf("/requests/%d/assign", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AttachFile uploads a file to a request. Read progress from the returned
// Upload and the updated request from its response data.
func (s *RequestService) AttachFile(ctx context.Context, id uint, f File) *Upload {
	return s.c.Upload(ctx, fmt.Sprintf("/requests/%d/attachments", id), f)
}

// EventService wraps /events.
type EventService struct {
	c *Client
}

// List returns events. Filters: upcoming, search.
func (s *EventService) List(ctx context.Context, q PageQuery) (*Page[Event], error) {
	return GetPage[Event](ctx, s.c, "/events", q)
}

func (s *EventService) Get(ctx context.Context, id uint) (*Event, error) {
	var out Event
	if err := s.c.Get(ctx, fmt.Sprintf("/events/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *EventService) Create(ctx context.Context, in EventInput) (*Event, error) {
	var out Event
	if err := s.c.Post(ctx, "/events", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *EventService) Update(ctx context.Context, id uint, in EventInput) (*Event, error) {
	var out Event
	if err := s.c.Put(ctx, fmt.Sprintf("/events/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *EventService) Delete(ctx context.Context, id uint) error {
	return s.c.Delete(ctx, fmt.Sprintf("/events/%d", id), nil)
}

// Register signs the caller up for an event, as a volunteer if asVolunteer.
func (s *EventService) Register(ctx context.Context, id uint, asVolunteer bool) error {
	body := map[string]bool{"asVolunteer": asVolunteer}
	return s.c.Post(ctx, fmt.Sprintf("/events/%d/register", id), body, nil)
}

func (s *EventService) Unregister(ctx context.Context, id uint) error {
	return s.c.Delete(ctx, fmt.Sprintf("/events/%d/register", id), nil)
}

func (s *EventService) Participants(ctx context.Context, id uint) ([]Participant, error) {
	var out []Participant
	if err := s.c.Get(ctx, fmt.Sprintf("/events/%d/participants", id), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DonationService wraps /donations.
type DonationService struct {
	c *Client
}

// List returns all donations. Staff only. Filters: type, campaign.
func (s *DonationService) List(ctx context.Context, q PageQuery) (*Page[Donation], error) {
	return GetPage[Donation](ctx, s.c, "/donations", q)
}

func (s *DonationService) Mine(ctx context.Context, q PageQuery) (*Page[Donation], error) {
	return GetPage[Donation](ctx, s.c, "/donations/my", q)
}

func (s *DonationService) Get(ctx context.Context, id uint) (*Donation, error) {
	var out Donation
	if err := s.c.Get(ctx, fmt.Sprintf("/donations/%d", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *DonationService) Create(ctx context.Context, in DonationInput) (*Donation, error) {
	var out Donation
	if err := s.c.Post(ctx, "/donations", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *DonationService) Stats(ctx context.Context) (*DonationStats, error) {
	var out DonationStats
	if err := s.c.Get(ctx, "/donations/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VolunteerService wraps /volunteers.
type VolunteerService struct {
	c *Client
}

// List returns volunteer profiles. Staff only. Filters: status, skill.
func (s *VolunteerService) List(ctx context.Context, q PageQuery) (*Page[VolunteerProfile], error) {
	return GetPage[VolunteerProfile](ctx, s.c, "/volunteers", q)
}

func (s *VolunteerService) Apply(ctx context.Context, in VolunteerInput) (*VolunteerProfile, error) {
	var out VolunteerProfile
	if err := s.c.Post(ctx, "/volunteers/apply", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *VolunteerService) Me(ctx context.Context) (*VolunteerProfile, error) {
	var out VolunteerProfile
	if err := s.c.Get(ctx, "/volunteers/me", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *VolunteerService) UpdateMe(ctx context.Context, in VolunteerInput) (*VolunteerProfile, error) {
	var out VolunteerProfile
	if err := s.c.Put(ctx, "/volunteers/me", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Assignments returns requests assigned to the calling volunteer.
func (s *VolunteerService) Assignments(ctx context.Context) ([]ServiceRequest, error) {
	var out []ServiceRequest
	if err := s.c.Get(ctx, "/volunteers/me/assignments", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminService wraps /admin. Every call needs the ADMIN role.
type AdminService struct {
	c *Client
}

func (s *AdminService) Stats(ctx context.Context) (*AdminStats, error) {
	var out AdminStats
	if err := s.c.Get(ctx, "/admin/stats", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users lists accounts. Filters: role, search, active.
func (s *AdminService) Users(ctx context.Context, q PageQuery) (*Page[User], error) {
	return GetPage[User](ctx, s.c, "/admin/users", q)
}

func (s *AdminService) SetUserRole(ctx context.Context, id uint, role Role) (*User, error) {
	body := map[string]Role{"role": role}
	var out User
	if err := s.c.Patch(ctx, fmt.Sprintf("/admin/users/%d/role", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminService) SetUserStatus(ctx context.Context, id uint, active bool) (*User, error) {
	body := map[string]bool{"isActive": active}
	var out User
	if err := s.c.Patch(ctx, fmt.Sprintf("/admin/users/%d/status", id), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AdminService) DeleteUser(ctx context.Context, id uint) error {
	return s.c.Delete(ctx, fmt.Sprintf("/admin/users/%d", id), nil)
}

// AnnouncementService wraps /announcements.
type AnnouncementService struct {
	c *Client
}

func (s *AnnouncementService) List(ctx context.Context, q PageQuery) (*Page[Announcement], error) {
	return GetPage[Announcement](ctx, s.c, "/announcements", q)
}

func (s *AnnouncementService) Create(ctx context.Context, in AnnouncementInput) (*Announcement, error) {
	var out Announcement
	if err := s.c.Post(ctx, "/announcements", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, id uint) error {
	return s.c.Delete(ctx, fmt.Sprintf("/announcements/%d", id), nil)
}

// AIService wraps the /ai assistant endpoints.
type AIService struct {
	c *Client
}

// Chat sends a message to the assistant. language is "en" or "tl"; empty
// lets the assistant detect it.
func (s *AIService) Chat(ctx context.Context, message, language string) (*ChatReply, error) {
	body := map[string]string{"message": message}
	if language != "" {
		body["language"] = language
	}
	var out ChatReply
	if err := s.c.Post(ctx, "/ai/chat", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PriorityPreview asks how a draft request would be prioritized.
func (s *AIService) PriorityPreview(ctx context.Context, in ServiceRequestInput) (*PriorityPreview, error) {
	var out PriorityPreview
	if err := s.c.Post(ctx, "/ai/priority-preview", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EmergencyService wraps /emergency.
type EmergencyService struct {
	c *Client
}

func (s *EmergencyService) ActiveAlerts(ctx context.Context) ([]EmergencyAlert, error) {
	var out []EmergencyAlert
	if err := s.c.Get(ctx, "/emergency/alerts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Raise reports an emergency and broadcasts it to every connected user.
func (s *EmergencyService) Raise(ctx context.Context, in EmergencyAlertInput) (*EmergencyAlert, error) {
	var out EmergencyAlert
	if err := s.c.Post(ctx, "/emergency/alerts", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *EmergencyService) Resolve(ctx context.Context, id uint) (*EmergencyAlert, error) {
	var out EmergencyAlert
	if err := s.c.Patch(ctx, fmt.Sprintf("/emergency/alerts/%d/resolve", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *EmergencyService) Contacts(ctx context.Context) ([]EmergencyContact, error) {
	var out []EmergencyContact
	if err := s.c.Get(ctx, "/emergency/contacts", &out); err != nil {
		return nil, err
	}
	return out, nil
}
