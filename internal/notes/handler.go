package notes

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/medscribe/internal/errors"
	"github.com/skillsenselab/medscribe/internal/server"
	"github.com/skillsenselab/medscribe/internal/server/middleware"
)

// Handler exposes the note routes. All routes expect the auth middleware
// to have established the user id.
type Handler struct {
	repo     *Repository
	compiler *Compiler
}

// NewHandler creates the note HTTP handler.
func NewHandler(repo *Repository, compiler *Compiler) *Handler {
	return &Handler{repo: repo, compiler: compiler}
}

// Register mounts the note routes on the router group.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/api/notes", h.Create)
	r.GET("/api/notes", h.List)
	r.GET("/api/notes/search", h.Search)
	r.GET("/api/notes/:id", h.Get)
	r.DELETE("/api/notes/:id", h.Delete)
}

// createRequest is the note creation payload.
type createRequest struct {
	Transcript  string  `json:"transcript" binding:"required"`
	AudioDigest string  `json:"audioDigest"`
	Language    string  `json:"language"`
	DurationSec float64 `json:"durationSec"`
}

// Create compiles the transcript into a note and persists it.
func (h *Handler) Create(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		server.RespondError(c, errors.Unauthorized("no authenticated user"))
		return
	}

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondError(c, errors.InvalidInput("body", err.Error()))
		return
	}

	compiled, err := h.compiler.Compile(c.Request.Context(), req.Transcript)
	if err != nil {
		server.RespondError(c, err)
		return
	}

	note := &Note{
		UserID:        userID,
		Content:       compiled.Content,
		ProcedureType: compiled.ProcedureType,
		Tags:          compiled.Tags,
		Transcript:    req.Transcript,
		AudioDigest:   req.AudioDigest,
		Language:      req.Language,
		DurationSec:   req.DurationSec,
	}
	if err := h.repo.Save(c.Request.Context(), note); err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondCreated(c, note)
}

// List returns one page of the user's notes.
func (h *Handler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	result, err := h.repo.List(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondOK(c, result)
}

// Search returns the user's notes matching the keyword.
func (h *Handler) Search(c *gin.Context) {
	userID := middleware.UserID(c)
	items, err := h.repo.Search(c.Request.Context(), userID, c.Query("q"))
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondOK(c, items)
}

// Get returns one of the user's notes by id.
func (h *Handler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	note, err := h.repo.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondOK(c, note)
}

// Delete removes one of the user's notes by id.
func (h *Handler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if err := h.repo.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		server.RespondError(c, err)
		return
	}
	server.RespondNoContent(c)
}
