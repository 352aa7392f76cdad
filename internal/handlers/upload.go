package handlers

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/kanzaki/taskproof/internal/constants"
	apierrors "github.com/kanzaki/taskproof/internal/errors"
)

// openImageUpload opens a multipart file, sniffs its actual content
// type, and rejects anything that is not an image. On success the file
// is rewound and ready to stream; the caller closes it. On failure a
// response has already been written.
func openImageUpload(c *gin.Context, header *multipart.FileHeader) (multipart.File, bool) {
	if header.Size > constants.MaxUploadBytes {
		apierrors.BadRequest(c, "Uploaded file is too large")
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		apierrors.BadRequest(c, "Failed to read uploaded file")
		return nil, false
	}

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		file.Close()
		apierrors.BadRequest(c, "Failed to read uploaded file")
		return nil, false
	}

	if !strings.HasPrefix(mtype.String(), "image/") {
		file.Close()
		apierrors.BadRequest(c, "Uploaded file must be an image")
		return nil, false
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		apierrors.InternalError(c, "Failed to process uploaded file")
		return nil, false
	}

	return file, true
}
