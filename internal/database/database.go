package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"leadbridge/internal/migrations"
	"leadbridge/internal/models"
	"leadbridge/internal/security"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Database is the SQLite-backed store for leads, customers and sync
// bookkeeping. It is the only component that touches persisted state.
type Database struct {
	db        *sql.DB
	encryptor *encryptor
}

func New(dbPath string) (*Database, error) {
	if len(dbPath) == 0 || dbPath[0] == '\x00' {
		return nil, fmt.Errorf("invalid database path")
	}

	if err := security.ValidateFilePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	file, err := os.OpenFile(dbPath, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create database file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(migrations.GetInitialSchema()); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize schema: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	encryptor, err := NewEncryptor()
	if err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to initialize encryptor: %w (close error: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to initialize encryptor: %w", err)
	}

	return &Database{db: db, encryptor: encryptor}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// SaveLead inserts or fully replaces a lead record. An empty ID means the
// store assigns one.
func (d *Database) SaveLead(ctx context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}

	encryptedPhone, err := d.encryptor.EncryptIfEnabled(lead.Number)
	if err != nil {
		return fmt.Errorf("failed to encrypt phone number: %w", err)
	}
	encryptedEmail, err := d.encryptor.EncryptIfEnabled(lead.Email)
	if err != nil {
		return fmt.Errorf("failed to encrypt email: %w", err)
	}

	tags, err := marshalOrEmpty(lead.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	customFields, err := marshalOrEmpty(lead.CustomFields)
	if err != nil {
		return fmt.Errorf("failed to marshal custom fields: %w", err)
	}

	history := lead.StatusHistory
	if history == nil {
		history = []models.StatusEntry{}
	}
	statusHistory, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to marshal status history: %w", err)
	}

	notes, err := marshalOrEmpty(lead.Notes)
	if err != nil {
		return fmt.Errorf("failed to marshal notes: %w", err)
	}

	return withRetry(ctx, func() error {
		_, err := d.db.ExecContext(ctx, upsertLeadQuery,
			lead.ID,
			lead.Name,
			nullable(encryptedPhone),
			nullable(encryptedEmail),
			nullable(tags),
			nullable(customFields),
			string(lead.Status),
			nullable(string(lead.PipelineStatus)),
			string(statusHistory),
			nullable(notes),
			lead.Hidden,
			lead.ConvertedToCustomer,
			lead.ConvertedAt,
			lead.FirstContactedAt,
			nullable(lead.ManyChatID),
			lead.LastSync,
			lead.LocallyModified,
			string(lead.Source),
			lead.CreatedAt,
		)
		return err
	}, "save lead")
}

// GetLead returns a lead by id, or (nil, nil) when it does not exist.
// Hidden leads remain readable by id.
func (d *Database) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	row := d.db.QueryRowContext(ctx, selectLeadByIDQuery, id)

	lead, err := d.scanLead(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// GetVisibleLeads returns all non-hidden leads ordered by last sync, newest
// first. This is the query behind the default list view and the realtime
// subscription.
func (d *Database) GetVisibleLeads(ctx context.Context) ([]models.Lead, error) {
	return d.queryLeads(ctx, selectVisibleLeadsQuery)
}

// GetAllLeads returns every lead including hidden ones. The reconciliation
// job iterates the full collection.
func (d *Database) GetAllLeads(ctx context.Context) ([]models.Lead, error) {
	return d.queryLeads(ctx, selectAllLeadsQuery)
}

func (d *Database) queryLeads(ctx context.Context, query string) ([]models.Lead, error) {
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []models.Lead
	for rows.Next() {
		lead, err := d.scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate leads: %w", err)
	}
	return leads, nil
}

// DeleteLead removes a lead record outright. This is distinct from hiding.
func (d *Database) DeleteLead(ctx context.Context, id string) error {
	return withRetry(ctx, func() error {
		_, err := d.db.ExecContext(ctx, deleteLeadQuery, id)
		return err
	}, "delete lead")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (d *Database) scanLead(row rowScanner) (*models.Lead, error) {
	var (
		lead                             models.Lead
		phone, email, tags, customFields sql.NullString
		notes, manyChatID, statusHistory sql.NullString
		pipelineStatus                   sql.NullString
		status, source                   string
		convertedAt, firstContactedAt    sql.NullTime
	)

	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&phone,
		&email,
		&tags,
		&customFields,
		&status,
		&pipelineStatus,
		&statusHistory,
		&notes,
		&lead.Hidden,
		&lead.ConvertedToCustomer,
		&convertedAt,
		&firstContactedAt,
		&manyChatID,
		&lead.LastSync,
		&lead.LocallyModified,
		&source,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Status = models.LeadStatus(status)
	lead.PipelineStatus = models.PipelineStatus(pipelineStatus.String)
	lead.Source = models.LeadSource(source)
	lead.ManyChatID = manyChatID.String

	if lead.Number, err = d.encryptor.DecryptIfEnabled(phone.String); err != nil {
		return nil, fmt.Errorf("failed to decrypt phone number: %w", err)
	}
	if lead.Email, err = d.encryptor.DecryptIfEnabled(email.String); err != nil {
		return nil, fmt.Errorf("failed to decrypt email: %w", err)
	}

	if tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &lead.Tags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
	}
	if customFields.String != "" {
		if err := json.Unmarshal([]byte(customFields.String), &lead.CustomFields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal custom fields: %w", err)
		}
	}

	lead.StatusHistory = []models.StatusEntry{}
	if statusHistory.String != "" {
		if err := json.Unmarshal([]byte(statusHistory.String), &lead.StatusHistory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal status history: %w", err)
		}
	}

	// The notes column may hold a legacy free-text value from the old system
	lead.Notes = models.ParseNotes(notes.String)

	if convertedAt.Valid {
		t := convertedAt.Time
		lead.ConvertedAt = &t
	}
	if firstContactedAt.Valid {
		t := firstContactedAt.Time
		lead.FirstContactedAt = &t
	}

	return &lead, nil
}

// SaveCustomer inserts or replaces a customer record
func (d *Database) SaveCustomer(ctx context.Context, customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now()
	}

	encryptedPhone, err := d.encryptor.EncryptIfEnabled(customer.Number)
	if err != nil {
		return fmt.Errorf("failed to encrypt phone number: %w", err)
	}
	encryptedEmail, err := d.encryptor.EncryptIfEnabled(customer.Email)
	if err != nil {
		return fmt.Errorf("failed to encrypt email: %w", err)
	}

	return withRetry(ctx, func() error {
		_, err := d.db.ExecContext(ctx, upsertCustomerQuery,
			customer.ID,
			customer.Name,
			nullable(encryptedPhone),
			nullable(encryptedEmail),
			nullable(customer.LeadID),
			customer.CreatedAt,
		)
		return err
	}, "save customer")
}

// GetCustomer returns a customer by id, or (nil, nil) when it does not exist
func (d *Database) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	row := d.db.QueryRowContext(ctx, selectCustomerByIDQuery, id)

	customer, err := d.scanCustomer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// GetAllCustomers returns all customers, newest first
func (d *Database) GetAllCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := d.db.QueryContext(ctx, selectAllCustomersQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []models.Customer
	for rows.Next() {
		customer, err := d.scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *customer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate customers: %w", err)
	}
	return customers, nil
}

func (d *Database) scanCustomer(row rowScanner) (*models.Customer, error) {
	var (
		customer            models.Customer
		phone, email, leadID sql.NullString
	)

	err := row.Scan(
		&customer.ID,
		&customer.Name,
		&phone,
		&email,
		&leadID,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	customer.LeadID = leadID.String

	if customer.Number, err = d.encryptor.DecryptIfEnabled(phone.String); err != nil {
		return nil, fmt.Errorf("failed to decrypt phone number: %w", err)
	}
	if customer.Email, err = d.encryptor.DecryptIfEnabled(email.String); err != nil {
		return nil, fmt.Errorf("failed to decrypt email: %w", err)
	}

	return &customer, nil
}

// GetSyncState reads a bookkeeping value, returning "" when the key has
// never been written
func (d *Database) GetSyncState(ctx context.Context, key string) (string, error) {
	var value string
	err := d.db.QueryRowContext(ctx, selectSyncStateQuery, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get sync state: %w", err)
	}
	return value, nil
}

// SetSyncState writes a bookkeeping value
func (d *Database) SetSyncState(ctx context.Context, key, value string) error {
	return withRetry(ctx, func() error {
		_, err := d.db.ExecContext(ctx, upsertSyncStateQuery, key, value)
		return err
	}, "set sync state")
}

func marshalOrEmpty(v interface{}) (string, error) {
	switch val := v.(type) {
	case []string:
		if len(val) == 0 {
			return "", nil
		}
	case map[string]interface{}:
		if len(val) == 0 {
			return "", nil
		}
	case models.NoteList:
		if len(val) == 0 {
			return "", nil
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
