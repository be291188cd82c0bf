package validator

import (
	"errors"
)

// DefaultMaxTransferSize caps a file pulled through the transfer endpoint.
const DefaultMaxTransferSize = 64 * 1024 * 1024 // 64MB

var (
	ErrEmptyFile  = errors.New("file is empty")
	ErrFileTooBig = errors.New("file too large")
)

// TransferConfig defines constraints for pulled files.
type TransferConfig struct {
	MaxFileSize int64
}

// DefaultTransferConfig returns the default transfer constraints.
func DefaultTransferConfig() *TransferConfig {
	return &TransferConfig{MaxFileSize: DefaultMaxTransferSize}
}

// ValidateFileSize checks if the file size is within the allowed limit.
func (c *TransferConfig) ValidateFileSize(size int64) error {
	if size <= 0 {
		return ErrEmptyFile
	}
	if c.MaxFileSize > 0 && size > c.MaxFileSize {
		return ErrFileTooBig
	}
	return nil
}
