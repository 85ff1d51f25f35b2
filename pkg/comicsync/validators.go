package comicsync

type SyncQuery struct {
	Start string `query:"start" json:"start" validate:"required,date"`
	End   string `query:"end" json:"end" validate:"required,date"`
	// Accepted for older clients of the Marvel endpoint. Collections were
	// never synced from ComicVine.
	IncludeCollections bool `query:"include_collections" json:"include_collections,omitempty"`
}
