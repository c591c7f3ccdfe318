package store

import (
	"github.com/google/uuid"
	"github.com/mmcdole/folio/internal/domain"
)

const viewerIDKey = "viewer_id"

// ViewerID returns the anonymous viewer identifier for this profile,
// generating and persisting one on first use. A store failure still yields
// a usable (session-only) identifier.
func ViewerID(s domain.Store) (string, error) {
	if data, ok, err := s.Get(BucketPrefs, viewerIDKey); err == nil && ok {
		if id, perr := uuid.ParseBytes(data); perr == nil {
			return id.String(), nil
		}
	}

	id := uuid.NewString()
	if err := s.Put(BucketPrefs, viewerIDKey, []byte(id)); err != nil {
		return id, err
	}
	return id, nil
}
