package links

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"brevly/codegen"
	"brevly/internal/errx"
	"brevly/internal/storage"
)

const (
	// MaxListSize caps the number of records returned by List.
	MaxListSize = 100

	// ExportFileName is the object name used for CSV exports.
	ExportFileName = "links-export.csv"

	exportContentType = "text/csv"
)

// CreateLinkRequest represents the parameters for creating a new link.
// Both fields are expected to be format-validated at the boundary before
// reaching the service; the service only enforces business-level uniqueness.
type CreateLinkRequest struct {
	OriginalURL string
	Code        string // Optional: if empty, a code will be generated
}

// ExportResult is the outcome of a CSV export. URL is nil when there was
// nothing to export and no upload took place.
type ExportResult struct {
	URL *string
}

// Service defines the business logic operations of the link registry.
type Service interface {
	Create(ctx context.Context, req CreateLinkRequest) (Link, error)
	List(ctx context.Context) ([]Link, error)
	GetByCode(ctx context.Context, code string) (Link, error)
	IncrementAccessCount(ctx context.Context, code string) error
	Delete(ctx context.Context, id uuid.UUID) (Link, error)
	ExportCSV(ctx context.Context) (ExportResult, error)
}

// service implements the Service interface.
type service struct {
	repo       Repository
	uploader   storage.Uploader
	codes      codegen.Generator
	codeLength int
	logger     *slog.Logger
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	CodeGenerator codegen.Generator
	CodeLength    int
	Logger        *slog.Logger
}

// NewService creates a new service instance.
func NewService(repo Repository, uploader storage.Uploader, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	codes := config.CodeGenerator
	if codes == nil {
		codes = codegen.NewURLSafe()
	}

	codeLength := config.CodeLength
	if codeLength < MinCodeLength || codeLength > MaxCodeLength {
		codeLength = codegen.DefaultLength
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &service{
		repo:       repo,
		uploader:   uploader,
		codes:      codes,
		codeLength: codeLength,
		logger:     logger,
	}
}

// Create stores a new link, generating a code when the caller supplied none.
// A duplicate code is a business outcome (Conflict), not a defect; there is
// no automatic retry or alternate-code fallback.
func (s *service) Create(ctx context.Context, req CreateLinkRequest) (Link, error) {
	const op = "links.service.Create"

	code := req.Code
	if code == "" {
		generated, err := s.codes.Generate(s.codeLength)
		if err != nil {
			return Link{}, errx.E(op, errx.Internal, err)
		}
		code = generated
	}

	created, err := s.repo.Insert(ctx, Link{
		Code:        code,
		OriginalURL: req.OriginalURL,
	})
	if err != nil {
		if errx.KindOf(err) == errx.Conflict {
			return Link{}, errx.E(op, errx.Conflict, err)
		}

		s.logger.ErrorContext(ctx, "unexpected store error creating link",
			"error", err.Error(),
			"operation", errx.OpOf(err),
		)
		return Link{}, errx.E(op, errx.Internal, err)
	}

	return created, nil
}

// List returns the most recent links, newest first, capped at MaxListSize.
func (s *service) List(ctx context.Context) ([]Link, error) {
	const op = "links.service.List"

	result, err := s.repo.List(ctx, MaxListSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "unexpected store error listing links",
			"error", err.Error(),
			"operation", errx.OpOf(err),
		)
		return nil, errx.E(op, errx.Internal, err)
	}
	return result, nil
}

// GetByCode is a pure lookup; it never mutates state. The access counter is
// advanced by a logically separate IncrementAccessCount call.
func (s *service) GetByCode(ctx context.Context, code string) (Link, error) {
	const op = "links.service.GetByCode"

	if code == "" {
		return Link{}, errx.E(op, errx.Invalid, errors.New("code cannot be empty"))
	}

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return Link{}, errx.E(op, errx.KindOf(err), err)
	}
	return link, nil
}

// IncrementAccessCount atomically advances the counter for code.
// A missing code is a silent no-op, mirroring the fire-and-forget nature of
// access tracking; only store failures surface as errors.
func (s *service) IncrementAccessCount(ctx context.Context, code string) error {
	const op = "links.service.IncrementAccessCount"

	if code == "" {
		return errx.E(op, errx.Invalid, errors.New("code cannot be empty"))
	}

	if err := s.repo.IncrementAccessCount(ctx, code); err != nil {
		return errx.E(op, errx.KindOf(err), err)
	}
	return nil
}

// Delete removes the link with the given id and returns it for confirmation.
// A second delete of the same id yields NotFound.
func (s *service) Delete(ctx context.Context, id uuid.UUID) (Link, error) {
	const op = "links.service.Delete"

	if id == uuid.Nil {
		return Link{}, errx.E(op, errx.Invalid, errors.New("id cannot be empty"))
	}

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		if errx.KindOf(err) == errx.NotFound {
			return Link{}, errx.E(op, errx.NotFound, err)
		}

		s.logger.ErrorContext(ctx, "unexpected store error deleting link",
			"error", err.Error(),
			"operation", errx.OpOf(err),
			"link_id", id.String(),
		)
		return Link{}, errx.E(op, errx.Internal, err)
	}
	return deleted, nil
}

// ExportCSV serializes every stored link (newest first, no cap) to CSV and
// uploads it. Exporting zero rows is not an error, but also not a real
// export: the uploader is not invoked and the result carries a nil URL.
func (s *service) ExportCSV(ctx context.Context) (ExportResult, error) {
	const op = "links.service.ExportCSV"

	all, err := s.repo.List(ctx, 0)
	if err != nil {
		s.logger.ErrorContext(ctx, "unexpected store error exporting links",
			"error", err.Error(),
			"operation", errx.OpOf(err),
		)
		return ExportResult{}, errx.E(op, errx.Internal, err)
	}

	if len(all) == 0 {
		return ExportResult{URL: nil}, nil
	}

	data, err := marshalCSV(all)
	if err != nil {
		return ExportResult{}, errx.E(op, errx.Internal, err)
	}

	url, err := s.uploader.Upload(ctx, storage.UploadParams{
		FileName:    ExportFileName,
		ContentType: exportContentType,
		Body:        data,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to upload links export",
			"error", err.Error(),
			"file_name", ExportFileName,
			"row_count", len(all),
		)
		return ExportResult{}, errx.E(op, errx.Internal, err)
	}

	return ExportResult{URL: &url}, nil
}
