// Package ppm writes binary pixel maps (P6) from 4 byte per pixel buffers.
package ppm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrShortBuffer = errors.New("ppm: pixel buffer too small for image size")
	ErrWriteFailed = errors.New("ppm: output write failed")
)

// Encode a width x height image stored as 4 bytes per pixel with row 0 at
// the bottom. Rows are written top to bottom and the 4th byte of each pixel
// is dropped. A trailing newline follows the last row.
func Encode(w io.Writer, width, height uint32, pix []byte) error {
	rowBytes := int(width) * 4
	if len(pix) < rowBytes*int(height) {
		return fmt.Errorf("%w: %dx%d needs %d bytes; got %d", ErrShortBuffer, width, height, rowBytes*int(height), len(pix))
	}

	if _, err := fmt.Fprintf(w, "P6\n%d %d\n255\n", width, height); err != nil {
		return err
	}

	scratch := make([]byte, 3*int(width))
	for y := 0; y < int(height); y++ {
		src := pix[(int(height)-1-y)*rowBytes:]
		for x := 0; x < int(width); x++ {
			copy(scratch[x*3:x*3+3], src[x*4:x*4+3])
		}
		if _, err := w.Write(scratch); err != nil {
			return err
		}
	}

	_, err := w.Write([]byte{'\n'})
	return err
}

// Create or truncate the file at path and encode the image into it. All
// failures wrap ErrWriteFailed.
func WriteFile(path string, width, height uint32, pix []byte) (err error) {
	if len(pix) < int(width)*int(height)*4 {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, ErrShortBuffer)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("%w: %v", ErrWriteFailed, closeErr)
		}
	}()

	bw := bufio.NewWriter(f)
	if err = Encode(bw, width, height, pix); err == nil {
		err = bw.Flush()
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	return nil
}
