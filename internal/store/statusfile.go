package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// ContactStatus is one entry in a per-batch status file.
type ContactStatus struct {
	Status       model.MessageStatus `json:"status"`
	LastUpdated  time.Time           `json:"lastUpdated"`
	ErrorMessage string              `json:"errorMessage,omitempty"`
}

// StatusFile persists a profile-URL → send-status map as JSON, one file
// per imported batch. Save merges into any existing file rather than
// overwriting it, so statuses from earlier sessions survive.
type StatusFile struct {
	path string
}

// NewStatusFile creates a status file handle under dir for the named batch.
func NewStatusFile(dir, batch string) *StatusFile {
	return &StatusFile{path: filepath.Join(dir, batch+".status.json")}
}

// Path returns the backing file path.
func (f *StatusFile) Path() string {
	return f.path
}

// Load reads the current status map. A missing file is an empty map.
func (f *StatusFile) Load() (map[string]ContactStatus, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]ContactStatus{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "statusfile: read %s", f.path)
	}

	statuses := map[string]ContactStatus{}
	if err := json.Unmarshal(data, &statuses); err != nil {
		return nil, eris.Wrapf(err, "statusfile: unmarshal %s", f.path)
	}
	return statuses, nil
}

// Save merges updates into the existing file and writes it atomically.
func (f *StatusFile) Save(updates map[string]ContactStatus) error {
	statuses, err := f.Load()
	if err != nil {
		return err
	}
	for url, st := range updates {
		statuses[url] = st
	}

	data, err := json.MarshalIndent(statuses, "", "  ")
	if err != nil {
		return eris.Wrap(err, "statusfile: marshal")
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return eris.Wrapf(err, "statusfile: write %s", tmp)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return eris.Wrapf(err, "statusfile: rename %s", f.path)
	}
	return nil
}

// Record merges a single contact's status into the file.
func (f *StatusFile) Record(profileURL string, status model.MessageStatus, errMsg string) error {
	return f.Save(map[string]ContactStatus{
		profileURL: {
			Status:       status,
			LastUpdated:  time.Now().UTC(),
			ErrorMessage: errMsg,
		},
	})
}
