package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/fabsketch-backend/internal/data/db"
	"github.com/yungbote/fabsketch-backend/internal/data/repos"
	types "github.com/yungbote/fabsketch-backend/internal/domain"
	"github.com/yungbote/fabsketch-backend/internal/domain/generation"
	"github.com/yungbote/fabsketch-backend/internal/observability"
	"github.com/yungbote/fabsketch-backend/internal/platform/logger"
)

// URLResolver turns a storage key into the URL clients load it from.
type URLResolver interface {
	PublicURL(key string) string
}

type FinalizeInput struct {
	SessionID      string
	Title          string
	Description    string
	Hashtags       string
	Materials      string
	SelectedImages []string
	OwnerID        uuid.UUID
}

type DesignURLs struct {
	Sketch      string
	FinalDesign string
	TechFlat    string
	TryOn       string
	Main        string
	Selected    []string
}

type ResultFinalizer interface {
	Finalize(ctx context.Context, in FinalizeInput) (*types.GeneratedDesign, error)
	ResolveURLs(sessionID string, selectedImages []string) DesignURLs
}

type resultFinalizer struct {
	db         *gorm.DB
	log        *logger.Logger
	urls       URLResolver
	userRepo   repos.UserRepo
	designRepo repos.DesignRepo
	metrics    *observability.Metrics
}

func NewResultFinalizer(
	db *gorm.DB,
	log *logger.Logger,
	urls URLResolver,
	userRepo repos.UserRepo,
	designRepo repos.DesignRepo,
	metrics *observability.Metrics,
) ResultFinalizer {
	return &resultFinalizer{
		db:         db,
		log:        log.With("service", "ResultFinalizer"),
		urls:       urls,
		userRepo:   userRepo,
		designRepo: designRepo,
		metrics:    metrics,
	}
}

// Finalize does not check that the session's artifacts exist, and repeated calls
// for one session each create a new record.
func (s *resultFinalizer) Finalize(ctx context.Context, in FinalizeInput) (design *types.GeneratedDesign, err error) {
	in.SessionID = strings.TrimSpace(in.SessionID)
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	var missing []string
	if in.SessionID == "" {
		missing = append(missing, "session_id")
	}
	if in.Title == "" {
		missing = append(missing, "title")
	}
	if in.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		s.metrics.IncFinalization("invalid")
		return nil, &ValidationError{Fields: missing}
	}

	ctx, span := observability.StartSpan(ctx, "generation.finalize")
	defer func() { observability.EndSpan(span, err) }()

	urls := s.ResolveURLs(in.SessionID, in.SelectedImages)
	selectedJSON, err := json.Marshal(urls.Selected)
	if err != nil {
		return nil, &StorageError{Op: "encode image urls", Cause: err}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.userRepo.Exists(ctx, tx, in.OwnerID)
		if err != nil {
			return &StorageError{Op: "load owner", Cause: err}
		}
		if !exists {
			return &NotFoundError{Entity: "user", ID: in.OwnerID.String()}
		}

		created, err := s.designRepo.Create(ctx, tx, &types.GeneratedDesign{
			ID:             uuid.New(),
			UserID:         in.OwnerID,
			Title:          in.Title,
			Description:    in.Description,
			Hashtags:       in.Hashtags,
			Materials:      in.Materials,
			ImageURL:       urls.Main,
			ImageURLs:      datatypes.JSON(selectedJSON),
			SketchURL:      urls.Sketch,
			FinalDesignURL: urls.FinalDesign,
			TechFlatURL:    urls.TechFlat,
			TryOnURL:       urls.TryOn,
			SessionID:      in.SessionID,
		})
		if err != nil {
			return &StorageError{Op: "create design", Cause: err}
		}
		design = created
		return nil
	})
	if err != nil {
		var nf *NotFoundError
		var se *StorageError
		if !errors.As(err, &nf) && !errors.As(err, &se) {
			err = &StorageError{Op: "commit design", Cause: err}
		}
		s.metrics.IncFinalization(finalizeOutcome(err))
		cause := errors.Unwrap(err)
		s.log.Warn("Finalize failed",
			"session_id", in.SessionID,
			"owner_id", in.OwnerID,
			"error", err,
			"cause", cause,
			"sqlstate", db.SQLState(cause),
			"transient", db.Transient(cause),
		)
		return nil, err
	}

	span.SetAttributes(attribute.String("design.id", design.ID.String()))
	s.metrics.IncFinalization("created")
	s.log.Info("Design finalized", "session_id", in.SessionID, "design_id", design.ID, "owner_id", in.OwnerID)
	return design, nil
}

// ResolveURLs is pure: the same session and selection always give the same URLs.
func (s *resultFinalizer) ResolveURLs(sessionID string, selectedImages []string) DesignURLs {
	urls := DesignURLs{
		Sketch:      s.urls.PublicURL(generation.ArtifactKey(sessionID, generation.RoleSketch)),
		FinalDesign: s.urls.PublicURL(generation.ArtifactKey(sessionID, generation.RoleFinalDesign)),
		TechFlat:    s.urls.PublicURL(generation.ArtifactKey(sessionID, generation.RoleTechFlat)),
		TryOn:       s.urls.PublicURL(generation.ArtifactKey(sessionID, generation.RoleTryOn)),
		Selected:    []string{},
	}
	if len(selectedImages) == 0 {
		selectedImages = []string{string(generation.RoleFinalDesign)}
	}

	chosen := map[generation.Role]bool{}
	for _, raw := range selectedImages {
		role, ok := generation.ParseRole(raw)
		if !ok || chosen[role] {
			continue
		}
		chosen[role] = true
		urls.Selected = append(urls.Selected, urls.forRole(role))
	}

	switch {
	case chosen[generation.RoleFinalDesign]:
		urls.Main = urls.FinalDesign
	case chosen[generation.RoleTryOn]:
		urls.Main = urls.TryOn
	default:
		urls.Main = urls.FinalDesign
	}
	return urls
}

func (u DesignURLs) forRole(role generation.Role) string {
	switch role {
	case generation.RoleSketch:
		return u.Sketch
	case generation.RoleTechFlat:
		return u.TechFlat
	case generation.RoleTryOn:
		return u.TryOn
	default:
		return u.FinalDesign
	}
}

func finalizeOutcome(err error) string {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return "owner_not_found"
	}
	return "storage_error"
}
