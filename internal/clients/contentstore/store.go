package contentstore

import (
	"context"

	"gorm.io/datatypes"
)

// Store is the host content store the workflow publishes approved candidates
// into. Publish returns an opaque reference to the live entry; Unpublish
// removes it. Unpublish of a reference the store no longer knows is treated
// as success, the content is already gone.
type Store interface {
	Publish(ctx context.Context, payload datatypes.JSON) (string, error)
	Unpublish(ctx context.Context, reference string) error
}
