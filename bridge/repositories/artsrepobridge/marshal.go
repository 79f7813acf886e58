package artsrepobridge

import (
	"time"

	"github.com/jrazmi/artplanner/core/repositories/artsrepo"
	"github.com/jrazmi/artplanner/sdk/validation"
)

// Static mount prefixes the stored file names are served under.
const (
	UploadsPrefix = "/uploads/"
	ResultsPrefix = "/results/"
)

func MarshalToBridge(art artsrepo.Art) Art {
	out := Art{
		ID:           art.ArtID,
		UserID:       art.UserID,
		OriginalPath: UploadsPrefix + art.OriginalPath,
		FeedbackText: art.FeedbackText,
		Status:       string(art.Status),
		CreatedAt:    art.CreatedAt.UTC().Format(time.RFC3339),
	}
	if art.ProcessedPath != nil {
		out.ProcessedPath = validation.StringPtr(ResultsPrefix + *art.ProcessedPath)
	}
	if art.CompletedAt != nil {
		out.CompletedAt = validation.StringPtr(art.CompletedAt.UTC().Format(time.RFC3339))
	}
	return out
}

// MarshalListToBridge converts a list of core models to bridge models
func MarshalListToBridge(arts []artsrepo.Art) []Art {
	out := make([]Art, len(arts))
	for i, art := range arts {
		out[i] = MarshalToBridge(art)
	}
	return out
}
