package results

import "errors"

var (
	ErrDatasetLoading     = errors.New("dataset is still loading")
	ErrDatasetUnavailable = errors.New("dataset failed to load")
	ErrUnsupportedFormat  = errors.New("unsupported export format")
	ErrInvalidDataset     = errors.New("invalid dataset")
)
