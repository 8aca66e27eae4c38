package iolib

import (
	"bytes"
	"io"
)

// WriteFull writes all of buf to w, retrying on short writes.
func WriteFull(w io.Writer, buf []byte) (uint, error) {
	total := uint(0)
	for total < uint(len(buf)) {
		n, err := w.Write(buf[total:])
		total += uint(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReadToEnd reads from r until io.EOF. Reaching io.EOF is not an error.
// On any other error the bytes read so far are returned with it.
func ReadToEnd(r io.Reader) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	temp := make([]byte, 4096)

	for {
		n, err := r.Read(temp)
		buf.Write(temp[:n])

		if err == io.EOF {
			return buf.Bytes(), nil
		}
		if err != nil {
			return buf.Bytes(), err
		}
	}
}
