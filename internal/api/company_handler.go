package api

import (
	"net/http"
	"time"

	"dairyflow/internal/service"
	v1 "dairyflow/pkg/api/v1"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	farm *service.FarmService
	now  func() time.Time
}

func NewCompanyHandler(farm *service.FarmService, now func() time.Time) *CompanyHandler {
	if now == nil {
		now = time.Now
	}
	return &CompanyHandler{farm: farm, now: now}
}

func (h *CompanyHandler) Me(c *gin.Context) {
	op := operator(c)
	if op == nil {
		return
	}
	company, err := h.farm.Company(c.Request.Context(), op.CompanyID)
	if err != nil {
		failErr(c, err)
		return
	}
	if !op.IsCompany() {
		company.InviteCode = ""
	}
	respond(c, http.StatusOK, company)
}

func (h *CompanyHandler) UpdateMe(c *gin.Context) {
	op := operator(c)
	if op == nil {
		return
	}
	var body v1.Company
	if !bindJSON(c, &body) {
		return
	}
	company, err := h.farm.UpdateCompany(c.Request.Context(), op.CompanyID, body)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, company)
}

func (h *CompanyHandler) GenerateCode(c *gin.Context) {
	op := operator(c)
	if op == nil {
		return
	}
	code, err := h.farm.GenerateCode(c.Request.Context(), op.CompanyID)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, v1.InviteCode{Code: code})
}

func (h *CompanyHandler) Summary(c *gin.Context) {
	op := operator(c)
	if op == nil {
		return
	}
	respond(c, http.StatusOK, h.farm.Summary(c.Request.Context(), op.CompanyID, h.now()))
}

func (h *CompanyHandler) Production(c *gin.Context) {
	op := operator(c)
	if op == nil {
		return
	}
	out, err := h.farm.Production(c.Request.Context(), op.CompanyID, c.Query("period"), h.now())
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, out)
}
