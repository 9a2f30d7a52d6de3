package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/edudash/edudash-backend/internal/edge"
	"github.com/edudash/edudash-backend/internal/model"
	"github.com/edudash/edudash-backend/internal/repository"
	"github.com/edudash/edudash-backend/internal/response"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Domain Errors
var (
	ErrRegistrationNotPending = errors.New("registration request is not pending")
	ErrImportInvalid          = errors.New("import file is not a valid registration sheet")
)

// registrationSheetHeader is the column layout shared by exports and imports.
var registrationSheetHeader = []string{
	"Guardian Name", "Guardian Email", "Guardian Phone",
	"Student First Name", "Student Last Name", "Student DOB",
	"Status", "Payment Reference", "Sync Status", "Submitted At",
}

// RegistrationService handles the enrollment review workflow and the
// external directory sync side effects.
type RegistrationService struct {
	regRepo      *repository.RegistrationRepository
	studentRepo  *repository.StudentRepository
	profileRepo  *repository.ProfileRepository
	notifService *NotificationService
	edge         *edge.Client
	log          zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(
	regRepo *repository.RegistrationRepository,
	studentRepo *repository.StudentRepository,
	profileRepo *repository.ProfileRepository,
	notifService *NotificationService,
	edgeClient *edge.Client,
	log zerolog.Logger,
) *RegistrationService {
	return &RegistrationService{
		regRepo:      regRepo,
		studentRepo:  studentRepo,
		profileRepo:  profileRepo,
		notifService: notifService,
		edge:         edgeClient,
		log:          log.With().Str("component", "registration_service").Logger(),
	}
}

// Create records a public enrollment application as pending.
func (s *RegistrationService) Create(ctx context.Context, req *model.CreateRegistrationRequest) (*model.RegistrationRequest, error) {
	preschoolID, err := uuid.Parse(req.PreschoolID)
	if err != nil {
		return nil, fmt.Errorf("parse preschool id: %w", err)
	}

	reg := &model.RegistrationRequest{
		ID:               uuid.New(),
		PreschoolID:      preschoolID,
		GuardianName:     strings.TrimSpace(req.GuardianName),
		GuardianEmail:    strings.ToLower(strings.TrimSpace(req.GuardianEmail)),
		GuardianPhone:    strings.TrimSpace(req.GuardianPhone),
		StudentFirstName: strings.TrimSpace(req.StudentFirstName),
		StudentLastName:  strings.TrimSpace(req.StudentLastName),
		StudentDOB:       req.StudentDOB,
		Status:           model.RegistrationPending,
		SyncStatus:       model.SyncPending,
	}
	if err := s.regRepo.Create(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// GetByID retrieves a registration request.
func (s *RegistrationService) GetByID(ctx context.Context, id uuid.UUID) (*model.RegistrationRequest, error) {
	return s.regRepo.GetByID(ctx, id)
}

// List returns a page of a preschool's registration requests, optionally
// filtered by status.
func (s *RegistrationService) List(ctx context.Context, preschoolID uuid.UUID, status *model.RegistrationStatus, page, perPage int) ([]model.RegistrationRequest, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	regs, total, err := s.regRepo.ListPaginated(ctx, preschoolID, status, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if regs == nil {
		regs = []model.RegistrationRequest{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return regs, pagination, nil
}

// Approve marks a pending registration approved, creates the student record
// locally, then pushes the approval to the external directory. The local
// commit always wins: a sync failure is reported as a non-fatal warning and
// the row is flagged sync_status=failed for manual reconciliation.
func (s *RegistrationService) Approve(ctx context.Context, id, reviewerID uuid.UUID) (*model.RegistrationRequest, string, error) {
	affected, err := s.regRepo.UpdateStatus(ctx, id, model.RegistrationApproved, reviewerID, "")
	if err != nil {
		return nil, "", err
	}
	if affected == 0 {
		return nil, "", ErrRegistrationNotPending
	}

	reg, err := s.regRepo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	student := &model.Student{
		ID:          uuid.New(),
		PreschoolID: reg.PreschoolID,
		FirstName:   reg.StudentFirstName,
		LastName:    reg.StudentLastName,
		DateOfBirth: reg.StudentDOB,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, "", err
	}

	warning := s.syncApproval(ctx, reg, student)
	if warning == "" {
		reg.SyncStatus = model.SyncSynced
	} else {
		reg.SyncStatus = model.SyncFailed
	}

	s.notifyGuardian(ctx, reg, "registration_approved",
		"Enrollment approved",
		fmt.Sprintf("The enrollment application for %s %s has been approved.", reg.StudentFirstName, reg.StudentLastName))

	return reg, warning, nil
}

// notifyGuardian sends the review outcome to the guardian's account, when one
// exists. Applications come in before signup, so a missing profile is normal
// and the email-only path is skipped rather than treated as an error.
func (s *RegistrationService) notifyGuardian(ctx context.Context, reg *model.RegistrationRequest, kind, title, body string) {
	guardian, err := s.profileRepo.GetByEmail(ctx, reg.GuardianEmail)
	if err != nil {
		s.log.Debug().Str("guardian_email", reg.GuardianEmail).Msg("No guardian profile, skipping notification")
		return
	}
	if err := s.notifService.Notify(ctx, guardian.ID, kind, title, body); err != nil {
		s.log.Error().Err(err).Str("guardian_id", guardian.ID.String()).Msg("Failed to notify guardian")
	}
}

// syncApproval pushes one approval to the external directory and records the
// outcome. Returns a warning message on failure, empty string on success.
func (s *RegistrationService) syncApproval(ctx context.Context, reg *model.RegistrationRequest, student *model.Student) string {
	payload := map[string]interface{}{
		"registration_id":    reg.ID,
		"preschool_id":       reg.PreschoolID,
		"guardian_name":      reg.GuardianName,
		"guardian_email":     reg.GuardianEmail,
		"guardian_phone":     reg.GuardianPhone,
		"student_id":         student.ID,
		"student_first_name": student.FirstName,
		"student_last_name":  student.LastName,
		"approved_at":        time.Now().UTC(),
	}
	var result struct {
		ExternalID string `json:"external_id"`
	}

	if err := s.edge.Invoke(ctx, edge.FnSyncRegistrationToEdudash, payload, &result); err != nil {
		s.log.Error().Err(err).Str("registration_id", reg.ID.String()).Msg("Registration sync failed")
		if dbErr := s.regRepo.UpdateSyncOutcome(ctx, reg.ID, model.SyncFailed, ""); dbErr != nil {
			s.log.Error().Err(dbErr).Str("registration_id", reg.ID.String()).Msg("Failed to record sync failure")
		}
		return "approved locally but the directory sync failed; it will need manual reconciliation"
	}

	if err := s.regRepo.UpdateSyncOutcome(ctx, reg.ID, model.SyncSynced, result.ExternalID); err != nil {
		s.log.Error().Err(err).Str("registration_id", reg.ID.String()).Msg("Failed to record sync success")
	}
	reg.ExternalID = result.ExternalID
	return ""
}

// Reject marks a pending registration rejected with the reviewer's reason.
// Rejections never leave the platform, so no sync is attempted.
func (s *RegistrationService) Reject(ctx context.Context, id, reviewerID uuid.UUID, reason string) (*model.RegistrationRequest, error) {
	affected, err := s.regRepo.UpdateStatus(ctx, id, model.RegistrationRejected, reviewerID, strings.TrimSpace(reason))
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrRegistrationNotPending
	}

	reg, err := s.regRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	body := fmt.Sprintf("The enrollment application for %s %s has been declined.", reg.StudentFirstName, reg.StudentLastName)
	if reg.RejectionReason != "" {
		body += " Reason: " + reg.RejectionReason
	}
	s.notifyGuardian(ctx, reg, "registration_rejected", "Enrollment declined", body)

	return reg, nil
}

// AttachProofOfPayment stores the uploaded POP path on a registration.
func (s *RegistrationService) AttachProofOfPayment(ctx context.Context, id uuid.UUID, popPath string) error {
	return s.regRepo.UpdatePOP(ctx, id, popPath)
}

// CreatePayment asks the payment edge function for a checkout reference and
// stores it on the registration.
func (s *RegistrationService) CreatePayment(ctx context.Context, id uuid.UUID, req *model.CreatePaymentRequest) (string, error) {
	reg, err := s.regRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	payload := map[string]interface{}{
		"registration_id": reg.ID,
		"guardian_email":  reg.GuardianEmail,
		"amount_cents":    req.AmountCents,
		"currency":        strings.ToUpper(req.Currency),
	}
	var result struct {
		Reference string `json:"reference"`
	}
	if err := s.edge.Invoke(ctx, edge.FnPaymentCreation, payload, &result); err != nil {
		return "", err
	}

	if err := s.regRepo.UpdatePaymentReference(ctx, id, result.Reference); err != nil {
		return "", err
	}
	return result.Reference, nil
}

// PullFromEdusite fetches registrations captured on the public site and
// upserts them locally, keyed by external ID. Returns the number of rows
// received.
func (s *RegistrationService) PullFromEdusite(ctx context.Context, preschoolID uuid.UUID) (int, error) {
	payload := map[string]interface{}{"preschool_id": preschoolID}
	var result struct {
		Registrations []struct {
			ExternalID       string     `json:"external_id"`
			GuardianName     string     `json:"guardian_name"`
			GuardianEmail    string     `json:"guardian_email"`
			GuardianPhone    string     `json:"guardian_phone"`
			StudentFirstName string     `json:"student_first_name"`
			StudentLastName  string     `json:"student_last_name"`
			StudentDOB       *time.Time `json:"student_dob"`
		} `json:"registrations"`
	}

	if err := s.edge.Invoke(ctx, edge.FnSyncRegistrationsFromEdusite, payload, &result); err != nil {
		return 0, err
	}

	for _, row := range result.Registrations {
		reg := &model.RegistrationRequest{
			ID:               uuid.New(),
			PreschoolID:      preschoolID,
			GuardianName:     row.GuardianName,
			GuardianEmail:    strings.ToLower(row.GuardianEmail),
			GuardianPhone:    row.GuardianPhone,
			StudentFirstName: row.StudentFirstName,
			StudentLastName:  row.StudentLastName,
			StudentDOB:       row.StudentDOB,
			Status:           model.RegistrationPending,
			SyncStatus:       model.SyncSynced,
			ExternalID:       row.ExternalID,
		}
		if err := s.regRepo.UpsertExternal(ctx, reg); err != nil {
			return 0, fmt.Errorf("upsert external registration %s: %w", row.ExternalID, err)
		}
	}

	s.log.Info().Int("count", len(result.Registrations)).Str("preschool_id", preschoolID.String()).Msg("Pulled registrations from edusite")
	return len(result.Registrations), nil
}

// ExportXLSX writes all of a preschool's registrations to an xlsx workbook.
func (s *RegistrationService) ExportXLSX(ctx context.Context, preschoolID uuid.UUID, w io.Writer) error {
	regs, err := s.regRepo.ListAll(ctx, preschoolID)
	if err != nil {
		return err
	}

	f, err := buildRegistrationWorkbook(regs)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func buildRegistrationWorkbook(regs []model.RegistrationRequest) (*excelize.File, error) {
	f := excelize.NewFile()

	const sheet = "Registrations"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, title := range registrationSheetHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for i, reg := range regs {
		dob := ""
		if reg.StudentDOB != nil {
			dob = reg.StudentDOB.Format("2006-01-02")
		}
		values := []interface{}{
			reg.GuardianName, reg.GuardianEmail, reg.GuardianPhone,
			reg.StudentFirstName, reg.StudentLastName, dob,
			string(reg.Status), reg.PaymentReference, string(reg.SyncStatus),
			reg.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}

	return f, nil
}

// ImportXLSX reads a registration sheet produced by ExportXLSX (or filled in
// offline) and creates pending requests from its rows. Rows missing the
// required guardian and student columns are skipped; the count of created
// rows is returned.
func (s *RegistrationService) ImportXLSX(ctx context.Context, preschoolID uuid.UUID, r io.Reader) (int, error) {
	parsed, err := parseRegistrationSheet(r)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range parsed {
		reg := &parsed[i]
		reg.ID = uuid.New()
		reg.PreschoolID = preschoolID
		if err := s.regRepo.Create(ctx, reg); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// parseRegistrationSheet reads rows from the first sheet of an xlsx workbook.
// Rows missing any required column come back omitted, not as an error.
func parseRegistrationSheet(r io.Reader) ([]model.RegistrationRequest, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrImportInvalid
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, ErrImportInvalid
	}
	if len(rows) < 2 {
		return nil, ErrImportInvalid
	}

	var regs []model.RegistrationRequest
	for _, row := range rows[1:] {
		if len(row) < 5 {
			continue
		}
		name, email, phone := strings.TrimSpace(row[0]), strings.TrimSpace(row[1]), strings.TrimSpace(row[2])
		first, last := strings.TrimSpace(row[3]), strings.TrimSpace(row[4])
		if name == "" || email == "" || first == "" || last == "" {
			continue
		}

		var dob *time.Time
		if len(row) > 5 && row[5] != "" {
			if parsed, err := time.Parse("2006-01-02", strings.TrimSpace(row[5])); err == nil {
				dob = &parsed
			}
		}

		regs = append(regs, model.RegistrationRequest{
			GuardianName:     name,
			GuardianEmail:    strings.ToLower(email),
			GuardianPhone:    phone,
			StudentFirstName: first,
			StudentLastName:  last,
			StudentDOB:       dob,
			Status:           model.RegistrationPending,
			SyncStatus:       model.SyncPending,
		})
	}
	return regs, nil
}

// CountPending returns the pending review count for dashboards.
func (s *RegistrationService) CountPending(ctx context.Context, preschoolID uuid.UUID) (int, error) {
	return s.regRepo.CountPending(ctx, preschoolID)
}
