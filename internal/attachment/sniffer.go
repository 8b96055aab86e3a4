package attachment

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

type DocType string

const (
	TypePDF  DocType = "pdf"
	TypeDOCX DocType = "docx"
	TypeText DocType = "txt"
)

var ErrUnknownType = errors.New("unknown document type")

type Result struct {
	Type DocType
	MIME string
}

func Detect(r io.Reader) (Result, []byte, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	head = head[:n]

	result, err := DetectHead(head)
	return result, head, err
}

func DetectHead(head []byte) (Result, error) {
	if len(head) == 0 {
		return Result{}, ErrUnknownType
	}

	if isPDF(head) {
		return Result{Type: TypePDF, MIME: "application/pdf"}, nil
	}
	if isDOCX(head) {
		return Result{Type: TypeDOCX, MIME: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, nil
	}
	if isText(head) {
		return Result{Type: TypeText, MIME: "text/plain"}, nil
	}

	return Result{}, ErrUnknownType
}

func isPDF(head []byte) bool {
	return len(head) >= 5 && bytes.Equal(head[:5], []byte("%PDF-"))
}

// isDOCX matches the zip container magic; docx, like all OOXML formats, is a
// zip archive.
func isDOCX(head []byte) bool {
	return len(head) >= 4 &&
		head[0] == 'P' && head[1] == 'K' &&
		head[2] == 0x03 && head[3] == 0x04
}

func isText(head []byte) bool {
	if bytes.IndexByte(head, 0x00) >= 0 {
		return false
	}
	// The sample may cut a multi-byte rune at the end; tolerate up to
	// UTFMax-1 dangling bytes before giving up.
	for i := 0; i < utf8.UTFMax && len(head) > 0; i++ {
		if utf8.Valid(head) {
			return true
		}
		head = head[:len(head)-1]
	}
	return utf8.Valid(head)
}

func MimeTypeFromHTTP(header http.Header) string {
	contentType := header.Get("Content-Type")
	if contentType == "" {
		return ""
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		return strings.TrimSpace(contentType[:idx])
	}
	return strings.TrimSpace(contentType)
}
