package constants

const (
	// DEFAULT_LIMIT is the default page size for list endpoints
	DEFAULT_LIMIT = 50
	// MAX_LIMIT is the maximum accepted page size
	MAX_LIMIT = 200
	// DEFAULT_OFFSET is the default page offset
	DEFAULT_OFFSET uint64 = 0
)
