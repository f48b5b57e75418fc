package common

import (
	"fmt"
	"io"
	"os"
	"strings"

	"infiniteats/internal/errors"
	"infiniteats/internal/types"
	"infiniteats/internal/utils"
)

// FileProcessor reads CLI inputs and writes outputs.
type FileProcessor struct {
	logger *errors.Logger
}

func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ReadBytes reads a whole file, mapping failures to IO errors.
func (fp *FileProcessor) ReadBytes(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil && fp.logger != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}
	return content, nil
}

// ReadResume loads a resume from disk. PDFs become a file input after the
// upload check; anything else is read as text.
func (fp *FileProcessor) ReadResume(filename string, maxSize int64) (types.ResumeInput, error) {
	if err := utils.ValidateInputFile(filename); err != nil {
		return types.ResumeInput{}, errors.NewValidationError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Invalid resume file %s", filename), err)
	}

	data, err := fp.ReadBytes(filename)
	if err != nil {
		return types.ResumeInput{}, err
	}

	if utils.IsPDFFile(filename) {
		file, err := CheckUpload(filename, data, maxSize)
		if err != nil {
			return types.ResumeInput{}, err
		}
		if fp.logger != nil {
			fp.logger.Debug("Loaded PDF resume", "filename", filename, "pages", file.Pages,
				"size", utils.FormatFileSize(int64(len(data))))
		}
		return types.ResumeInput{File: file}, nil
	}

	if !utils.IsTextFile(filename) && fp.logger != nil {
		fp.logger.Warn("Resume file may not be a text file, reading it as text", "filename", filename)
	}
	return types.ResumeInput{Text: string(data)}, nil
}

// JobSource names where the job target comes from. At most one field is
// expected to be set.
type JobSource struct {
	File string
	Text string
	Role string
}

// ResolveJob turns a JobSource into a JobContext.
func (fp *FileProcessor) ResolveJob(src JobSource) (types.JobContext, error) {
	if err := ValidateJobSource(src); err != nil {
		return types.JobContext{}, err
	}

	switch {
	case src.File != "":
		if err := utils.ValidateInputFile(src.File); err != nil {
			return types.JobContext{}, errors.NewValidationError(errors.ErrCodeFileNotReadable,
				fmt.Sprintf("Invalid job description file %s", src.File), err)
		}
		data, err := fp.ReadBytes(src.File)
		if err != nil {
			return types.JobContext{}, err
		}
		return types.JobContext{Description: string(data)}, nil
	case strings.TrimSpace(src.Text) != "":
		return types.JobContext{Description: src.Text}, nil
	default:
		return types.JobContext{Role: src.Role}, nil
	}
}

// WriteFile writes content to a file, creating parent directories.
func (fp *FileProcessor) WriteFile(filename string, content []byte) error {
	if err := utils.EnsureParentDir(filename); err != nil {
		return errors.NewIOError("DIRECTORY_CREATE_FAILED",
			fmt.Sprintf("Cannot create directory for %s", filename), err)
	}
	if err := os.WriteFile(filename, content, 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}
