package common

import (
	"bytes"
	"fmt"

	"infiniteats/internal/errors"
	"infiniteats/internal/types"
	"infiniteats/internal/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const (
	PDFMimeType = "application/pdf"

	MsgUploadPDFOnly = "Please upload a PDF file."
)

// CheckUpload accepts an uploaded resume only if its content sniffs as a
// PDF and it fits in maxSize bytes. The declared type is logged by callers
// but never trusted.
func CheckUpload(name string, data []byte, maxSize int64) (*types.ResumeFile, error) {
	if len(data) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeUnsupportedMedia, MsgUploadPDFOnly, nil)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("File is too large (%s). The limit is %s.",
				utils.FormatFileSize(int64(len(data))), utils.FormatFileSize(maxSize)), nil)
	}

	detected := mimetype.Detect(data)
	if !detected.Is(PDFMimeType) {
		return nil, errors.NewValidationError(errors.ErrCodeUnsupportedMedia, MsgUploadPDFOnly, nil).
			WithContext("detected_type", detected.String())
	}

	return &types.ResumeFile{
		Data:     data,
		MimeType: PDFMimeType,
		Name:     name,
		Pages:    CountPDFPages(data),
	}, nil
}

// CountPDFPages returns the page count, or 0 when the document cannot be
// parsed. Text extraction is left to the model, so a broken page tree is
// not an error.
func CountPDFPages(data []byte) (pages int) {
	defer func() {
		if recover() != nil {
			pages = 0
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0
	}
	return reader.NumPage()
}
