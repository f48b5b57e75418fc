package common

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"infiniteats/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF assembles a minimal well-formed PDF with the given page count.
func buildPDF(pages int) []byte {
	kids := make([]string, pages)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled in below
	}
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestCheckUploadAcceptsPDF(t *testing.T) {
	data := buildPDF(2)
	file, err := CheckUpload("cv.pdf", data, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, PDFMimeType, file.MimeType)
	assert.Equal(t, "cv.pdf", file.Name)
	assert.Equal(t, 2, file.Pages)
	assert.Equal(t, data, file.Data)
}

func TestCheckUploadRejectsNonPDF(t *testing.T) {
	for name, data := range map[string][]byte{
		"plain text": []byte("Jane Doe\nEngineer"),
		"png":        {0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0},
		"empty":      {},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := CheckUpload("resume.pdf", data, 1<<20)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.Equal(t, MsgUploadPDFOnly, errors.UserMessage(err, ""))
		})
	}
}

func TestCheckUploadSizeLimit(t *testing.T) {
	_, err := CheckUpload("big.pdf", buildPDF(1), 16)
	require.Error(t, err)
	assert.Contains(t, errors.UserMessage(err, ""), "too large")
}

func TestCountPDFPagesToleratesBrokenFiles(t *testing.T) {
	assert.Equal(t, 3, CountPDFPages(buildPDF(3)))
	assert.Zero(t, CountPDFPages([]byte("%PDF-1.4\ngarbage")))

	file, err := CheckUpload("broken.pdf", []byte("%PDF-1.4\ngarbage"), 1<<20)
	require.NoError(t, err)
	assert.Zero(t, file.Pages)
}
