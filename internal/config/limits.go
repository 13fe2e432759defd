package config

const (
	// MaxSpaceNameLength is the maximum length for space names.
	// Limited to 255 to keep names short enough for navigation headers.
	MaxSpaceNameLength = 255

	// MaxDocumentTitleLength is the maximum length for document titles.
	MaxDocumentTitleLength = 255

	// MaxReorderItems caps a single reorder request. A space larger than this
	// cannot be reordered in one call.
	MaxReorderItems = 5000

	// MaxKeywordLength caps the tree filter keyword.
	MaxKeywordLength = 200
)
