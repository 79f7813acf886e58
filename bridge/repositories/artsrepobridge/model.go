package artsrepobridge

// Art is the JSON shape clients read. Paths are server relative URLs under
// the static mounts.
type Art struct {
	ID            string  `json:"id"`
	UserID        string  `json:"userId"`
	OriginalPath  string  `json:"originalPath"`
	ProcessedPath *string `json:"processedPath"`
	FeedbackText  *string `json:"feedbackText"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"createdAt"`
	CompletedAt   *string `json:"completedAt,omitempty"`
}

// Folders is the gallery view.
type Folders struct {
	MyDrawings []Art `json:"myDrawings"`
	Processed  []Art `json:"processed"`
}
