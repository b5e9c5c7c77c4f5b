package handler

import (
	"github.com/gin-gonic/gin"

	"rmtl/internal/domain"
	"rmtl/internal/service"
)

// EnumHandler serves the selectable vocabularies.
type EnumHandler struct {
	enums service.EnumService
}

// NewEnumHandler creates a new EnumHandler.
func NewEnumHandler(enums service.EnumService) *EnumHandler {
	return &EnumHandler{enums: enums}
}

// List handles GET /api/v1/enums
func (h *EnumHandler) List(c *gin.Context) {
	enums, err := h.enums.GetEnums(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, enums)
}

// ReportTypes handles GET /api/v1/report-types
func (h *EnumHandler) ReportTypes(c *gin.Context) {
	RespondOK(c, reportTypeProfiles())
}

func reportTypeProfiles() []domain.ReportProfile {
	types := domain.ReportTypes()
	out := make([]domain.ReportProfile, 0, len(types))
	for _, rt := range types {
		if p, ok := domain.ProfileFor(rt); ok {
			out = append(out, p)
		}
	}
	return out
}
