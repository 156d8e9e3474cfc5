package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/fabsketch-backend/internal/domain/generation"
	"github.com/yungbote/fabsketch-backend/internal/http/response"
	"github.com/yungbote/fabsketch-backend/internal/platform/ctxutil"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
	"github.com/yungbote/fabsketch-backend/internal/services"
)

const DefaultMaxGenerateBodyBytes int64 = 20 << 20

type GenerationHandler struct {
	log          *logger.Logger
	invoker      services.GenerationInvoker
	status       services.SessionStatusResolver
	finalizer    services.ResultFinalizer
	maxBodyBytes int64
}

func NewGenerationHandler(
	log *logger.Logger,
	invoker services.GenerationInvoker,
	status services.SessionStatusResolver,
	finalizer services.ResultFinalizer,
	maxBodyBytes int64,
) *GenerationHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxGenerateBodyBytes
	}
	return &GenerationHandler{
		log:          log.With("handler", "GenerationHandler"),
		invoker:      invoker,
		status:       status,
		finalizer:    finalizer,
		maxBodyBytes: maxBodyBytes,
	}
}

type generateRequest struct {
	Image    string `json:"image"`
	Category string `json:"category"`
	Gender   string `json:"gender"`
	Type     string `json:"type"`
	Style    string `json:"style"`
}

// POST /api/generate
func (h *GenerationHandler) Generate(c *gin.Context) {
	if _, ok := requestUserID(c); !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)

	params, err := h.bindGenerate(c)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	res, err := h.invoker.Invoke(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		response.RespondAPIError(c, classify(err, "generation_failed"))
		return
	}

	specsLog := json.RawMessage(res.SpecsLog)
	if len(specsLog) == 0 {
		specsLog = nil
	}
	response.RespondOK(c, gin.H{
		"session_id": res.SessionID,
		"status":     string(generation.StateCompleted),
		"step_1":     res.Step1,
		"step_2":     res.Step2,
		"step_3":     res.Step3,
		"specs_log":  specsLog,
	})
}

func (h *GenerationHandler) bindGenerate(c *gin.Context) (generation.Parameters, error) {
	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		return h.bindGenerateMultipart(c)
	}
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return generation.Parameters{}, fmt.Errorf("invalid JSON body: %w", err)
	}
	return generation.Parameters{
		ImageData: req.Image,
		Category:  req.Category,
		Gender:    req.Gender,
		Type:      req.Type,
		Style:     req.Style,
	}, nil
}

// Multipart uploads carry the sketch as an "image" file part; it is forwarded
// base64 encoded, the same shape JSON callers send.
func (h *GenerationHandler) bindGenerateMultipart(c *gin.Context) (generation.Parameters, error) {
	params := generation.Parameters{
		ImageData: c.PostForm("image"),
		Category:  c.PostForm("category"),
		Gender:    c.PostForm("gender"),
		Type:      c.PostForm("type"),
		Style:     c.PostForm("style"),
	}
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return params, nil
	}
	if err != nil {
		return params, fmt.Errorf("invalid multipart body: %w", err)
	}
	f, err := fh.Open()
	if err != nil {
		return params, fmt.Errorf("open image part: %w", err)
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return params, fmt.Errorf("read image part: %w", err)
	}
	params.ImageData = base64.StdEncoding.EncodeToString(raw)
	return params, nil
}

type saveDesignRequest struct {
	SessionID      string   `json:"session_id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Hashtags       string   `json:"hashtags"`
	Materials      string   `json:"materials"`
	SelectedImages []string `json:"selected_images"`
}

type designSummary struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	ImageURL       string          `json:"image_url"`
	ImageURLs      json.RawMessage `json:"image_urls"`
	SketchURL      string          `json:"sketch_url"`
	FinalDesignURL string          `json:"final_design_url"`
	TechFlatURL    string          `json:"tech_flat_url"`
	TryOnURL       string          `json:"try_on_url"`
	Hashtags       string          `json:"hashtags"`
	Materials      string          `json:"materials"`
	SessionID      string          `json:"session_id"`
	CreatedAt      time.Time       `json:"created_at"`
}

// POST /api/save-design
func (h *GenerationHandler) SaveDesign(c *gin.Context) {
	ownerID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req saveDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("invalid JSON body: %w", err))
		return
	}

	d, err := h.finalizer.Finalize(c.Request.Context(), services.FinalizeInput{
		SessionID:      req.SessionID,
		Title:          req.Title,
		Description:    req.Description,
		Hashtags:       req.Hashtags,
		Materials:      req.Materials,
		SelectedImages: req.SelectedImages,
		OwnerID:        ownerID,
	})
	if err != nil {
		_ = c.Error(err)
		response.RespondAPIError(c, classify(err, "save_design_failed"))
		return
	}

	response.RespondCreated(c, gin.H{
		"message":   "Design saved to feed successfully",
		"design_id": d.ID,
		"design": designSummary{
			ID:             d.ID,
			Title:          d.Title,
			Description:    d.Description,
			ImageURL:       d.ImageURL,
			ImageURLs:      json.RawMessage(d.ImageURLs),
			SketchURL:      d.SketchURL,
			FinalDesignURL: d.FinalDesignURL,
			TechFlatURL:    d.TechFlatURL,
			TryOnURL:       d.TryOnURL,
			Hashtags:       d.Hashtags,
			Materials:      d.Materials,
			SessionID:      d.SessionID,
			CreatedAt:      d.CreatedAt,
		},
	})
}

// GET /api/generation-status/:session_id
func (h *GenerationHandler) Status(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("session_id"))
	st := h.status.Status(c.Request.Context(), sessionID)

	body := gin.H{
		"session_id":      st.SessionID,
		"status":          string(st.State),
		"completed_files": st.CompletedFiles,
		"progress":        st.Progress,
	}
	if st.Dispatch != "" {
		body["dispatch"] = string(st.Dispatch)
	}
	response.RespondOK(c, body)
}

func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("authentication required"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}
