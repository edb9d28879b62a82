// SPDX-License-Identifier: MPL-2.0

package download

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrChecksumMismatch reports a downloaded archive whose digest differs.
	ErrChecksumMismatch = errors.New("checksum mismatch")

	// ErrAssetNotFound reports a file missing from a release or checksums.txt.
	ErrAssetNotFound = errors.New("asset not found")

	errNoValidEntries = errors.New("no valid checksum entries found")
)

// ChecksumError describes a checksum mismatch.
type ChecksumError struct {
	Filename string
	Expected string
	Got      string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s\nExpected: %s\nGot:      %s", e.Filename, e.Expected, e.Got)
}

func (e *ChecksumError) Unwrap() error { return ErrChecksumMismatch }

// ParseChecksums reads sha256sum output ("<hex>  <file>" per line) into a
// file name to lowercase digest map. Malformed lines are skipped.
func ParseChecksums(r io.Reader) (map[string]string, error) {
	sums := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		hash, name, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "  ")
		name = strings.TrimPrefix(strings.TrimSpace(name), "*")
		if !ok || name == "" || !isValidHexHash(hash) {
			continue
		}
		sums[name] = strings.ToLower(hash)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading checksums: %w", err)
	}
	if len(sums) == 0 {
		return nil, errNoValidEntries
	}
	return sums, nil
}

func isValidHexHash(s string) bool {
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
