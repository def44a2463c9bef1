package service

import (
	"context"
	"time"

	"leadbridge/internal/errors"
	"leadbridge/internal/models"
	"leadbridge/internal/validation"
	"leadbridge/pkg/manychat/types"

	"github.com/sirupsen/logrus"
)

// LeadDatabaseService defines the database operations needed by LeadService
type LeadDatabaseService interface {
	SaveLead(ctx context.Context, lead *models.Lead) error
	GetLead(ctx context.Context, id string) (*models.Lead, error)
	GetVisibleLeads(ctx context.Context) ([]models.Lead, error)
	DeleteLead(ctx context.Context, id string) error
}

// ChangeNotifier lets writers signal that the lead collection changed so the
// live query can refresh its snapshot
type ChangeNotifier interface {
	NotifyChanged()
}

// CustomerCreator creates a customer record for a converted lead.
// ConvertToCustomer only marks the lead; no implementation of this interface
// is wired yet, and the conversion endpoint does not call it.
type CustomerCreator interface {
	CreateFromLead(ctx context.Context, lead *models.Lead) (*models.Customer, error)
}

// CreateLeadRequest carries the fields of the manual lead-creation form.
// Its status lives in the pipeline domain, not the CRM sync domain.
type CreateLeadRequest struct {
	Name           string                 `json:"name"`
	Number         string                 `json:"number,omitempty"`
	Email          string                 `json:"email,omitempty"`
	Tags           []string               `json:"tags,omitempty"`
	CustomFields   map[string]interface{} `json:"customFields,omitempty"`
	PipelineStatus models.PipelineStatus  `json:"pipelineStatus,omitempty"`
}

// LeadService owns all mutations of lead state. It is the sole writer apart
// from the reconciliation job.
type LeadService struct {
	db       LeadDatabaseService
	mcClient types.ContactClient
	notifier ChangeNotifier
	logger   *logrus.Logger
	now      func() time.Time
}

// NewLeadService creates a new lead service instance
func NewLeadService(db LeadDatabaseService, mcClient types.ContactClient, notifier ChangeNotifier, logger *logrus.Logger) *LeadService {
	return &LeadService{
		db:       db,
		mcClient: mcClient,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateLead creates a lead from a manual form submission
func (ls *LeadService) CreateLead(ctx context.Context, req CreateLeadRequest) (*models.Lead, error) {
	if err := validation.ValidateLeadName(req.Name); err != nil {
		return nil, err
	}
	if req.Number != "" {
		if err := validation.ValidatePhoneNumber(req.Number); err != nil {
			return nil, err
		}
	}
	if req.Email != "" {
		if err := validation.ValidateEmail(req.Email); err != nil {
			return nil, err
		}
	}
	if err := validation.ValidateTags(req.Tags); err != nil {
		return nil, err
	}

	pipeline := req.PipelineStatus
	if pipeline == "" {
		pipeline = models.PipelineStatusNew
	}
	if err := validation.ValidatePipelineStatus(pipeline); err != nil {
		return nil, err
	}

	now := ls.now()
	lead := &models.Lead{
		Name:           req.Name,
		Number:         req.Number,
		Email:          req.Email,
		Tags:           req.Tags,
		CustomFields:   req.CustomFields,
		Status:         models.LeadStatusNew,
		PipelineStatus: pipeline,
		StatusHistory:  []models.StatusEntry{},
		Hidden:         false,
		Source:         models.LeadSourceManual,
		LastSync:       now,
	}

	if err := ls.db.SaveLead(ctx, lead); err != nil {
		return nil, errors.NewDatabaseError("create lead", err)
	}

	ls.logger.WithField(LogFieldLeadID, lead.ID).Info("Created lead")
	ls.notifyChanged()
	return lead, nil
}

// GetLead returns a lead by id. Hidden leads remain readable.
func (ls *LeadService) GetLead(ctx context.Context, leadID string) (*models.Lead, error) {
	lead, err := ls.db.GetLead(ctx, leadID)
	if err != nil {
		return nil, errors.NewDatabaseError("get lead", err)
	}
	if lead == nil {
		return nil, errors.NewNotFoundError("lead", leadID)
	}
	return lead, nil
}

// ListLeads returns all non-hidden leads ordered by last sync, newest first
func (ls *LeadService) ListLeads(ctx context.Context) ([]models.Lead, error) {
	leads, err := ls.db.GetVisibleLeads(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list leads", err)
	}
	return leads, nil
}

// UpdateLeadStatus moves a lead to a new CRM status. Transitions are
// unrestricted: any status is reachable from any other. The write appends to
// the status history, unhides the lead, refreshes lastSync and marks the
// record locally modified so the reconciliation job never overwrites it
// again.
func (ls *LeadService) UpdateLeadStatus(ctx context.Context, leadID string, newStatus models.LeadStatus) (*models.Lead, error) {
	if err := validation.ValidateLeadStatus(newStatus); err != nil {
		return nil, err
	}

	lead, err := ls.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	now := ls.now()
	updated := *lead
	updated.Status = newStatus
	updated.Hidden = false
	updated.LastSync = now
	updated.LocallyModified = true
	updated.StatusHistory = append(append([]models.StatusEntry{}, lead.StatusHistory...),
		models.StatusEntry{Status: newStatus, ChangedAt: now})

	// Stamped once; re-entering "contacted" keeps the original timestamp
	if newStatus == models.LeadStatusContacted && updated.FirstContactedAt == nil {
		updated.FirstContactedAt = &now
	}

	if err := ls.db.SaveLead(ctx, &updated); err != nil {
		ls.logger.WithError(err).WithField(LogFieldLeadID, leadID).Error("Failed to update lead status")
		return nil, errors.NewDatabaseError("update lead status", err)
	}

	ls.logger.WithFields(logrus.Fields{
		LogFieldLeadID: leadID,
		LogFieldStatus: string(newStatus),
	}).Info("Updated lead status")
	ls.notifyChanged()
	return &updated, nil
}

// AddLeadNote appends a note. A legacy free-text notes value is normalized
// into the sequence form as part of the same write.
func (ls *LeadService) AddLeadNote(ctx context.Context, leadID string, note models.Note) (*models.Lead, error) {
	if err := validation.ValidateNoteText(note.Text); err != nil {
		return nil, err
	}

	lead, err := ls.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	now := ls.now()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}

	updated := *lead
	updated.Notes = lead.Notes.Append(note, now)
	updated.LastSync = now

	if err := ls.db.SaveLead(ctx, &updated); err != nil {
		ls.logger.WithError(err).WithField(LogFieldLeadID, leadID).Error("Failed to add lead note")
		return nil, errors.NewDatabaseError("add lead note", err)
	}

	ls.notifyChanged()
	return &updated, nil
}

// HideLead soft-deletes a lead: it disappears from the default list view and
// its status becomes lost. There is no unhide operation.
func (ls *LeadService) HideLead(ctx context.Context, leadID string) (*models.Lead, error) {
	lead, err := ls.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	updated := *lead
	updated.Hidden = true
	updated.Status = models.LeadStatusLost
	updated.LocallyModified = true

	if err := ls.db.SaveLead(ctx, &updated); err != nil {
		ls.logger.WithError(err).WithField(LogFieldLeadID, leadID).Error("Failed to hide lead")
		return nil, errors.NewDatabaseError("hide lead", err)
	}

	ls.logger.WithField(LogFieldLeadID, leadID).Info("Hid lead")
	ls.notifyChanged()
	return &updated, nil
}

// ConvertToCustomer marks a lead as converted. It does not create the
// customer record; that responsibility sits behind CustomerCreator, which is
// not wired yet.
func (ls *LeadService) ConvertToCustomer(ctx context.Context, leadID string) (*models.Lead, error) {
	lead, err := ls.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	now := ls.now()
	updated := *lead
	updated.ConvertedToCustomer = true
	updated.ConvertedAt = &now
	updated.Status = models.LeadStatusConverted

	if err := ls.db.SaveLead(ctx, &updated); err != nil {
		ls.logger.WithError(err).WithField(LogFieldLeadID, leadID).Error("Failed to convert lead")
		return nil, errors.NewDatabaseError("convert lead", err)
	}

	ls.logger.WithField(LogFieldLeadID, leadID).Info("Converted lead to customer")
	ls.notifyChanged()
	return &updated, nil
}

// DeleteLead removes the record outright, unlike HideLead
func (ls *LeadService) DeleteLead(ctx context.Context, leadID string) error {
	lead, err := ls.GetLead(ctx, leadID)
	if err != nil {
		return err
	}

	if err := ls.db.DeleteLead(ctx, lead.ID); err != nil {
		return errors.NewDatabaseError("delete lead", err)
	}

	ls.logger.WithField(LogFieldLeadID, leadID).Info("Deleted lead")
	ls.notifyChanged()
	return nil
}

// SendMessage sends an outbound message to the lead through ManyChat, using
// the contact thread when the lead is linked to one and falling back to the
// plain phone-number path otherwise.
func (ls *LeadService) SendMessage(ctx context.Context, leadID, text string) (*types.SendMessageResponse, error) {
	if err := validation.ValidateMessageText(text); err != nil {
		return nil, err
	}

	lead, err := ls.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}

	switch {
	case lead.ManyChatID != "":
		return ls.mcClient.SendMessage(ctx, lead.ManyChatID, text)
	case lead.Number != "":
		return ls.mcClient.SendText(ctx, lead.Number, text)
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "lead has no contact channel")
	}
}

func (ls *LeadService) notifyChanged() {
	if ls.notifier != nil {
		ls.notifier.NotifyChanged()
	}
}
