package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the UTC, second-precision layout used for stored emails and their filenames.
const TimestampLayout = "20060102T150405Z"

// ClassificationResult is the answer returned to the caller for one email.
type ClassificationResult struct {
	Category       Category `json:"categoria"`
	SuggestedReply string   `json:"resposta_sugerida"`
}

// StoredEmail is the persisted record of one classified email.
type StoredEmail struct {
	Text      string                 `json:"texto"`
	Category  string                 `json:"categoria"`
	CreatedAt Timestamp              `json:"criado_em"`
	Metadata  map[string]interface{} `json:"metadata"`
	Path      string                 `json:"_path,omitempty"`
}

func NewStoredEmail(text string, category Category, metadata map[string]interface{}, now time.Time) *StoredEmail {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return &StoredEmail{
		Text:      text,
		Category:  category.String(),
		CreatedAt: NewTimestamp(now),
		Metadata:  metadata,
	}
}

// Timestamp is a UTC time truncated to the second, encoded as TimestampLayout.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Second)}
}

func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}
