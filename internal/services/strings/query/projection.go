package query

import (
	"time"

	"github.com/saulotoledo/strings-database/internal/services/strings/storage"
)

// Projection is the external shape of a stored string entry.
type Projection struct {
	ID        int64     `json:"id"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// SaveRequest carries the only field a caller may set on a new entry.
type SaveRequest struct {
	Value string `json:"value"`
}

// ToProjection copies a persisted record into its external shape.
func ToProjection(record storage.Record) Projection {
	return Projection{
		ID:        record.ID,
		Value:     record.Value,
		CreatedAt: record.CreatedAt,
	}
}

// FromSaveRequest builds the record to persist. Identity and creation time
// are left for the store to assign.
func FromSaveRequest(request SaveRequest) storage.Record {
	return storage.Record{Value: request.Value}
}
