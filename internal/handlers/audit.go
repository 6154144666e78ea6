package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/oureum/oureum-backend/internal/services/audit"
	"github.com/oureum/oureum-backend/internal/utils/pagination"
	"github.com/oureum/oureum-backend/internal/utils/response"
)

type AuditHandler struct {
	auditService audit.Service
}

func NewAuditHandler(auditService audit.Service) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List returns audit entries newest-first, optionally filtered by
// action and target. Admin only.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	entries, total, err := h.auditService.List(c.Context(), c.Query("action"), c.Query("target"), p.Limit, p.Offset)
	if err != nil {
		return response.ServerError(c, "internal error")
	}
	p.Total = total
	return c.JSON(pagination.Response(p, entries))
}
