package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/roach88/memberbridge/internal/member"
	"github.com/roach88/memberbridge/internal/migrate"
)

type handlers struct {
	orc *migrate.Orchestrator
	log zerolog.Logger
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) list(c *gin.Context) {
	members, err := h.orc.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponseList(members))
}

func (h *handlers) search(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter name is required"})
		return
	}

	members, err := h.orc.Search(c.Request.Context(), name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponseList(members))
}

func (h *handlers) create(c *gin.Context) {
	var req memberRequest
	if !h.bind(c, &req) {
		return
	}

	created, err := h.orc.Create(c.Request.Context(), req.toMember())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResponse(created))
}

func (h *handlers) get(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}

	m, err := h.orc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(m))
}

func (h *handlers) update(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}

	var req memberRequest
	if !h.bind(c, &req) {
		return
	}

	updated, err := h.orc.Update(c.Request.Context(), id, req.toMember())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(updated))
}

func (h *handlers) delete(c *gin.Context) {
	id, ok := h.memberID(c)
	if !ok {
		return
	}

	removed, err := h.orc.Delete(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// memberID extracts the path identifier, rejecting non-numeric ids at
// the edge when reads are served from the relational store. The
// adapters enforce the same rule; failing here just gives callers a
// cleaner 400 before any store is touched.
func (h *handlers) memberID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if h.orc.PrimaryIsRelational() {
		if _, err := member.ParseNumeric(id); err != nil {
			h.writeError(c, err)
			return "", false
		}
	}
	return id, true
}

// bind decodes and validates a JSON request body, writing a 400 with a
// field-to-message map on validation failure.
func (h *handlers) bind(c *gin.Context, req *memberRequest) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(gin.H, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = validationMessage(fe)
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": fields})
		return false
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
	return false
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be 10 to 15 digits, optionally prefixed with +"
	case "min", "max":
		return "must be between 1 and 25 characters"
	case "excludesall":
		return "must not contain numbers"
	default:
		return "is invalid"
	}
}

// writeError maps store errors onto status codes. Anything without a
// known code is a 500 and gets logged with its request id.
func (h *handlers) writeError(c *gin.Context, err error) {
	switch {
	case member.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
	case member.IsDuplicateEmail(err):
		c.JSON(http.StatusConflict, gin.H{"error": "email already in use"})
	case member.IsInvalidIdentifier(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
	default:
		h.log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
