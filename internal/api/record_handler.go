package api

import (
	"net/http"

	"dairyflow/internal/service"

	"github.com/gin-gonic/gin"
)

// RecordHandler exposes one farm record kind as a REST collection.
type RecordHandler[T any] struct {
	records *service.Records[T]
}

func NewRecordHandler[T any](records *service.Records[T]) *RecordHandler[T] {
	return &RecordHandler[T]{records: records}
}

func (h *RecordHandler[T]) register(g *gin.RouterGroup, path string, write gin.HandlerFunc) {
	g.GET(path, h.List)
	g.GET(path+"/:id", h.Get)
	g.POST(path, write, h.Create)
	g.PUT(path+"/:id", write, h.Update)
	g.PATCH(path+"/:id", write, h.Update)
	g.DELETE(path+"/:id", write, h.Delete)
}

func (h *RecordHandler[T]) List(c *gin.Context) {
	op := operator(c)
	if op == nil {
		return
	}
	respond(c, http.StatusOK, h.records.List(c.Request.Context(), op.CompanyID, c.Request.URL.Query()))
}

func (h *RecordHandler[T]) Get(c *gin.Context) {
	op := operator(c)
	if op == nil {
		return
	}
	v, err := h.records.Get(c.Request.Context(), op.CompanyID, c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, v)
}

func (h *RecordHandler[T]) Create(c *gin.Context) {
	op := operator(c)
	if op == nil {
		return
	}
	var body T
	if !bindJSON(c, &body) {
		return
	}
	v, err := h.records.Create(c.Request.Context(), op.CompanyID, body)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, v)
}

func (h *RecordHandler[T]) Update(c *gin.Context) {
	op := operator(c)
	if op == nil {
		return
	}
	var body T
	if !bindJSON(c, &body) {
		return
	}
	v, err := h.records.Update(c.Request.Context(), op.CompanyID, c.Param("id"), body)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, v)
}

func (h *RecordHandler[T]) Delete(c *gin.Context) {
	op := operator(c)
	if op == nil {
		return
	}
	if err := h.records.Delete(c.Request.Context(), op.CompanyID, c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": c.Param("id")})
}
