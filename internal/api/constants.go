package api

// Cache-Control header values.
const (
	CacheOneWeek = "public, max-age=604800"
	CacheNoStore = "no-cache"
)

// Multipart field names accepted for listing media.
var mediaFields = []string{"media", "images"}

// multipartMemory is how much of a multipart body is buffered in memory before spilling to disk.
const multipartMemory = 32 << 20
