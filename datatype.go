package epitopes

import (
	"bufio"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZ
	DataTypeBZip2
)

var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeZ:     {0x1f, 0x9d},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
}

// DetectDataType matches the leading bytes of a prediction table against the
// known compression signatures. Byte code signatures from
// https://stackoverflow.com/a/19127748/199475
func DetectDataType(head []byte) DataType {
Outer:
	for dt, sig := range byteCodeSigs {
		if len(head) < len(sig) {
			continue
		}
		for position := range sig {
			if head[position] != sig[position] {
				continue Outer
			}
		}
		return dt
	}

	return DataTypeNoCompression
}

// MaybeDecompress wraps r with a decompressor if its first bytes look like a
// compressed stream. Plain streams are returned buffered but otherwise as-is.
func MaybeDecompress(r io.Reader) (io.Reader, error) {
	buffered := bufio.NewReader(r)

	// Peek does not consume, so the decompressor still sees the magic bytes.
	head, err := buffered.Peek(6)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}

	switch DetectDataType(head) {
	case DataTypeGzip:
		return gzip.NewReader(buffered)
	case DataTypeZip:
		// Only the first member of an archive is read.
		zr := zipstream.NewReader(buffered)
		if _, err := zr.Next(); err != nil {
			return nil, err
		}
		return zr, nil
	case DataTypeBZip2:
		return bzip2.NewReader(buffered), nil
	case DataTypeXZ:
		return xz.NewReader(buffered, 0)
	case DataTypeZ:
		return zlib.NewReader(buffered)
	}

	return buffered, nil
}
