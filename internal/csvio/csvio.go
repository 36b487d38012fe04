// Package csvio reads and writes the contact-queue CSV format:
// firstName,lastName,profileURL,message,status.
package csvio

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

var header = []string{"firstName", "lastName", "profileURL", "message", "status"}

// validStatuses are the statuses an imported row may carry. Anything
// else falls back to pending.
var validStatuses = map[model.MessageStatus]bool{
	model.MessageStatusPending:    true,
	model.MessageStatusInProgress: true,
	model.MessageStatusSent:       true,
	model.MessageStatusFailed:     true,
	model.MessageStatusSkipped:    true,
}

// ReadContacts parses a contact CSV. The header row is required; a
// missing or unrecognized status defaults to pending. Rows without a
// profile URL are rejected since the URL is the contact's identity.
// Every row is stamped with a fresh contact ID so the store's
// upsert-by-ID cannot collapse imported rows into one another.
func ReadContacts(r io.Reader) ([]model.Contact, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // message column may be omitted

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csvio: parse")
	}
	if len(rows) == 0 {
		return nil, eris.New("csvio: empty file")
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	contacts := make([]model.Contact, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if len(row) < 3 {
			return nil, eris.Errorf("csvio: row %d: expected at least 3 fields, got %d", i+2, len(row))
		}
		profileURL := strings.TrimSpace(row[2])
		if profileURL == "" {
			return nil, eris.Errorf("csvio: row %d: missing profile URL", i+2)
		}

		contact := model.Contact{
			ID:            uuid.New().String(),
			FirstName:     strings.TrimSpace(row[0]),
			LastName:      strings.TrimSpace(row[1]),
			ProfileURL:    profileURL,
			MessageStatus: model.MessageStatusPending,
			Position:      i,
		}
		if len(row) > 3 {
			contact.Message = row[3]
		}
		if len(row) > 4 {
			if status := model.MessageStatus(strings.TrimSpace(row[4])); validStatuses[status] {
				contact.MessageStatus = status
			}
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

// WriteContacts writes contacts in queue order with the standard header.
func WriteContacts(w io.Writer, contacts []model.Contact) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return eris.Wrap(err, "csvio: write header")
	}
	for _, c := range contacts {
		row := []string{c.FirstName, c.LastName, c.ProfileURL, c.Message, string(c.MessageStatus)}
		if err := writer.Write(row); err != nil {
			return eris.Wrap(err, "csvio: write row")
		}
	}
	writer.Flush()
	return eris.Wrap(writer.Error(), "csvio: flush")
}

// WriteLeads exports leads with their contact details for downstream
// tooling.
func WriteLeads(w io.Writer, leads []model.Lead) error {
	writer := csv.NewWriter(w)
	leadHeader := []string{"firstName", "lastName", "profileURL", "email", "phone", "company", "title", "location", "status", "source"}
	if err := writer.Write(leadHeader); err != nil {
		return eris.Wrap(err, "csvio: write header")
	}
	for _, l := range leads {
		row := []string{
			l.FirstName, l.LastName, l.ProfileURL,
			l.Email, l.Phone, l.Company, l.Title, l.Location,
			string(l.Status), l.Source,
		}
		if err := writer.Write(row); err != nil {
			return eris.Wrap(err, "csvio: write row")
		}
	}
	writer.Flush()
	return eris.Wrap(writer.Error(), "csvio: flush")
}

func checkHeader(row []string) error {
	if len(row) < 3 {
		return eris.New("csvio: missing header row")
	}
	for i, want := range header[:3] {
		if !strings.EqualFold(strings.TrimSpace(row[i]), want) {
			return eris.Errorf("csvio: header column %d: expected %q, got %q", i+1, want, row[i])
		}
	}
	return nil
}
