package ports

import (
	"context"

	"gocleanse/domain/dataset"
)

// DatasetSource loads a complete dataset from an external system such as a
// file or a database query
type DatasetSource interface {
	Load(ctx context.Context) (*dataset.Dataset, error)
}
