package artsrepobridge

import (
	"context"
	"errors"
	"net/http"

	"github.com/jrazmi/artplanner/bridge/scaffolding/errs"
	"github.com/jrazmi/artplanner/core/cases/analysiscase"
	"github.com/jrazmi/artplanner/infrastructure/filestore"
	"github.com/jrazmi/artplanner/infrastructure/web"
)

// ImageField is the multipart field carrying the drawing.
const ImageField = "image"

// ReadUpload pulls the image part out of a multipart request. Other form
// values stay readable through r.FormValue afterwards.
func ReadUpload(ctx context.Context, r *http.Request, maxBytes int64) (analysiscase.Upload, *errs.Error) {
	file, err := web.FormFile(web.GetWriter(ctx), r, ImageField, maxBytes)
	if err != nil {
		if errors.Is(err, web.ErrBodyTooLarge) {
			return analysiscase.Upload{}, errs.Newf(errs.TooLarge, "image exceeds %d bytes", maxBytes)
		}
		return analysiscase.Upload{}, errs.Newf(errs.InvalidArgument, "image: %s", err)
	}

	return analysiscase.Upload{
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Data:        file.Data,
	}, nil
}

// UploadError maps a failed upload to an app error.
func UploadError(err error) *errs.Error {
	switch {
	case errors.Is(err, filestore.ErrNotImage), errors.Is(err, filestore.ErrEmpty), errors.Is(err, filestore.ErrBadName):
		return errs.New(errs.InvalidArgument, err)
	}
	return errs.New(errs.InternalOnlyLog, err)
}
