package database

// Lead queries
const (
	upsertLeadQuery = `
		INSERT OR REPLACE INTO leads (
			id, name, phone_number, email, tags, custom_fields,
			status, pipeline_status, status_history, notes,
			hidden, converted_to_customer, converted_at, first_contacted_at,
			manychat_id, last_sync, locally_modified, source,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	selectLeadColumns = `
		SELECT id, name, phone_number, email, tags, custom_fields,
		       status, pipeline_status, status_history, notes,
		       hidden, converted_to_customer, converted_at, first_contacted_at,
		       manychat_id, last_sync, locally_modified, source,
		       created_at, updated_at
		FROM leads
	`

	selectLeadByIDQuery = selectLeadColumns + `
		WHERE id = ?
	`

	selectVisibleLeadsQuery = selectLeadColumns + `
		WHERE hidden = 0
		ORDER BY last_sync DESC
	`

	selectAllLeadsQuery = selectLeadColumns + `
		ORDER BY last_sync DESC
	`

	deleteLeadQuery = `
		DELETE FROM leads
		WHERE id = ?
	`
)

// Customer queries
const (
	upsertCustomerQuery = `
		INSERT OR REPLACE INTO customers (
			id, name, phone_number, email, lead_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	selectCustomerByIDQuery = `
		SELECT id, name, phone_number, email, lead_id, created_at, updated_at
		FROM customers
		WHERE id = ?
	`

	selectAllCustomersQuery = `
		SELECT id, name, phone_number, email, lead_id, created_at, updated_at
		FROM customers
		ORDER BY created_at DESC
	`
)

// Sync state queries
const (
	upsertSyncStateQuery = `
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`

	selectSyncStateQuery = `
		SELECT value
		FROM sync_state
		WHERE key = ?
	`
)
