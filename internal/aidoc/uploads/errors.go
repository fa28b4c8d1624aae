package uploads

import (
	"context"
	"errors"
	"fmt"
	"net"

	filestorage "github.com/aisa-it/aidoc/internal/aidoc/file-storage"
)

// Reason - типизированная причина сбоя загрузки.
type Reason string

const (
	ReasonBucketMissing Reason = "bucket_missing"
	ReasonNetwork       Reason = "network"
	ReasonUnknown       Reason = "unknown"
)

// UploadError описывает сбой загрузки файла с человекочитаемой причиной.
type UploadError struct {
	Reason Reason
	Cause  error
}

func (e *UploadError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("upload failed: %s", e.Reason)
	}
	return fmt.Sprintf("upload failed: %s: %v", e.Reason, e.Cause)
}

func (e *UploadError) Unwrap() error {
	return e.Cause
}

// classify определяет причину сбоя по ошибке хранилища.
func classify(err error) *UploadError {
	if errors.Is(err, filestorage.ErrBucketNotExist) {
		return &UploadError{Reason: ReasonBucketMissing, Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &UploadError{Reason: ReasonNetwork, Cause: err}
	}

	return &UploadError{Reason: ReasonUnknown, Cause: err}
}
