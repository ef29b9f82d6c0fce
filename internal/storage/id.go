package storage

import (
	"crypto/sha256"
	"fmt"

	"github.com/google/uuid"
)

// unitNamespace is the fixed UUIDv5 namespace for unit point IDs.
var unitNamespace = uuid.MustParse("8f2a6c34-1d9b-4e07-9c55-7b3af20d61e8")

// UnitID derives the deterministic point ID for a content unit from
// (document_id, page_number, content_type, content hash). Repeated ingestion
// of an unchanged unit produces the same ID, so upserts overwrite instead of
// duplicating.
func UnitID(unit ContentUnit) string {
	contentHash := sha256.Sum256([]byte(unit.RawText))
	key := fmt.Sprintf("%s|%d|%s|%x",
		unit.DocumentID, unit.PageNumber, unit.ContentType, contentHash)
	return uuid.NewSHA1(unitNamespace, []byte(key)).String()
}
