package readers

import (
	"io"

	"github.com/gatherpics/media-ingest/common"
)

func LimitReaderWithOverrunError(r io.ReadCloser, n int64) io.ReadCloser {
	return &limitedReader{r: r, n: n}
}

type limitedReader struct {
	r io.ReadCloser
	n int64
}

func (r *limitedReader) Read(p []byte) (int, error) {
	if r.n <= 0 {
		// See if we can read one more byte, indicating the stream is too big
		b := make([]byte, 1)
		n, err := r.r.Read(b)
		if err != nil {
			// ignore - we're at the end anyways
			return 0, io.EOF
		}
		if n > 0 {
			p[0] = b[0]
			return n, common.ErrMediaTooLarge
		}

		return n, io.EOF
	}

	// Cap the read at the remaining budget so a single large read can't
	// overshoot the limit unnoticed
	if int64(len(p)) > r.n {
		p = p[:r.n]
	}

	n, err := r.r.Read(p)
	r.n -= int64(n)
	return n, err
}

func (r *limitedReader) Close() error {
	return r.r.Close()
}
