package handlers

import (
	"strings"

	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/core/services"
	"barangaylink/internal/pkg/pagination"
	"barangaylink/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequestHandler handles service request endpoints
type RequestHandler struct {
	requestService *services.RequestService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func requestFilter(c *fiber.Ctx) repositories.RequestFilter {
	return repositories.RequestFilter{
		Status:   strings.ToUpper(c.Query("status")),
		Category: strings.ToUpper(c.Query("category")),
		Priority: strings.ToUpper(c.Query("priority")),
		Search:   strings.TrimSpace(c.Query("search")),
	}
}

// List returns every request
// @Summary List service requests
// @Description Staff only. Ordered by priority, then newest.
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param status query string false "PENDING, IN_PROGRESS, RESOLVED or REJECTED"
// @Param category query string false "Category"
// @Param priority query string false "URGENT, HIGH, MEDIUM or LOW"
// @Param search query string false "Search title and description"
// @Success 200 {object} response.Response{data=[]models.ServiceRequest}
// @Router /requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	p := pagination.GetParams(c)
	reqs, total, err := h.requestService.List(c.Context(), requestFilter(c), p)
	if err != nil {
		return serviceError(c, err, "Failed to list requests")
	}
	return response.Paginated(c, reqs, p, total)
}

// Mine returns the caller's requests
// @Summary List my service requests
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param status query string false "Status"
// @Success 200 {object} response.Response{data=[]models.ServiceRequest}
// @Router /requests/my [get]
func (h *RequestHandler) Mine(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	p := pagination.GetParams(c)
	reqs, total, err := h.requestService.Mine(c.Context(), a, requestFilter(c), p)
	if err != nil {
		return serviceError(c, err, "Failed to list requests")
	}
	return response.Paginated(c, reqs, p, total)
}

// Get returns one request
// @Summary Get a service request
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response{data=models.ServiceRequest}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /requests/{id} [get]
func (h *RequestHandler) Get(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	req, err := h.requestService.Get(c.Context(), a, id)
	if err != nil {
		return serviceError(c, err, "Failed to get request")
	}
	return response.Success(c, "", req)
}

// Create files a new request
// @Summary File a service request
// @Description Priority comes from the prioritization service when configured, otherwise from the category
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRequestInput true "Request"
// @Success 201 {object} response.Response{data=models.ServiceRequest}
// @Failure 400 {object} response.Response
// @Router /requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	var in services.CreateRequestInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	req, err := h.requestService.Create(c.Context(), a, &in)
	if err != nil {
		return serviceError(c, err, "Failed to create request")
	}
	return response.Created(c, "Request submitted", req)
}

// Update edits a request
// @Summary Update a service request
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body services.UpdateRequestInput true "Changes"
// @Success 200 {object} response.Response{data=models.ServiceRequest}
// @Router /requests/{id} [put]
func (h *RequestHandler) Update(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}
	var in services.UpdateRequestInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	req, err := h.requestService.Update(c.Context(), a, id, &in)
	if err != nil {
		return serviceError(c, err, "Failed to update request")
	}
	return response.Success(c, "Request updated", req)
}

// Delete removes a request
// @Summary Delete a service request
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Router /requests/{id} [delete]
func (h *RequestHandler) Delete(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	if err := h.requestService.Delete(c.Context(), a, id); err != nil {
		return serviceError(c, err, "Failed to delete request")
	}
	return response.Success(c, "Request deleted", nil)
}

// UpdateStatus moves a request through its workflow
// @Summary Change request status
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body services.StatusInput true "New status"
// @Success 200 {object} response.Response{data=models.ServiceRequest}
// @Failure 400 {object} response.Response
// @Router /requests/{id}/status [patch]
func (h *RequestHandler) UpdateStatus(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}
	var in services.StatusInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	req, err := h.requestService.UpdateStatus(c.Context(), a, id, &in)
	if err != nil {
		return serviceError(c, err, "Failed to update status")
	}
	return response.Success(c, "Status updated", req)
}

// Assign gives a request to a volunteer
// @Summary Assign a volunteer
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body services.AssignInput true "Volunteer"
// @Success 200 {object} response.Response{data=models.ServiceRequest}
// @Router /requests/{id}/assign [post]
func (h *RequestHandler) Assign(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}
	var in services.AssignInput
	if ok, err := bind(c, &in); !ok {
		return err
	}

	req, err := h.requestService.Assign(c.Context(), a, id, &in)
	if err != nil {
		return serviceError(c, err, "Failed to assign volunteer")
	}
	return response.Success(c, "Volunteer assigned", req)
}

// Upload attaches a file to a request
// @Summary Upload an attachment
// @Tags Requests
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param file formData file true "Attachment"
// @Success 200 {object} response.Response{data=models.ServiceRequest}
// @Failure 413 {object} response.Response
// @Router /requests/{id}/attachments [post]
func (h *RequestHandler) Upload(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return response.BadRequest(c, "Could not read upload")
	}
	defer f.Close()

	req, err := h.requestService.AttachFile(c.Context(), a, id, services.Attachment{
		Filename: fh.Filename,
		Size:     fh.Size,
		Content:  f,
	})
	if err != nil {
		return serviceError(c, err, "Failed to store attachment")
	}
	return response.Success(c, "Attachment uploaded", req)
}
