package body

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileUpload is one file-bearing multipart part, per spec.md §4.5: a
// field name, filename, content type, and either in-memory bytes or a
// lazy reader over a spooled temp file (streaming mode).
type FileUpload struct {
	FieldName   string
	Filename    string
	ContentType string
	Size        int64

	data     []byte
	tempPath string
}

// Data returns the upload's bytes, reading from the temp file if this
// upload was produced by ParseMultipartStreaming.
func (f *FileUpload) Data() ([]byte, error) {
	if f.data != nil || f.tempPath == "" {
		return f.data, nil
	}
	return os.ReadFile(f.tempPath)
}

// Open returns a reader over the upload's bytes, lazily opening the
// spooled temp file in streaming mode.
func (f *FileUpload) Open() (io.ReadCloser, error) {
	if f.tempPath == "" {
		return io.NopCloser(bytes.NewReader(f.data)), nil
	}
	return os.Open(f.tempPath)
}

// Remove deletes the upload's spooled temp file, if any. Safe to call
// on a buffered upload (no-op).
func (f *FileUpload) Remove() error {
	if f.tempPath == "" {
		return nil
	}
	return os.Remove(f.tempPath)
}

// MultipartForm is the parsed {fields, files} pair spec.md §4.5 describes.
type MultipartForm struct {
	Values Form
	Files  []*FileUpload
}

// RemoveAll unlinks every spooled temp file in the form.
func (m *MultipartForm) RemoveAll() {
	for _, f := range m.Files {
		f.Remove()
	}
}

// ParseMultipart buffers every part in memory, bounded by
// limits.MaxMultipartSize overall and limits.MaxFileSize per file.
func ParseMultipart(r io.Reader, boundary string, limits Limits) Result[*MultipartForm] {
	return parseMultipart(r, boundary, limits, false)
}

// ParseMultipartStreaming spools file parts to limits.UploadTempDir (or
// os.TempDir() when empty), yielding FileUpload entries whose Data/Open
// read lazily from the temp file rather than holding the part in memory.
func ParseMultipartStreaming(r io.Reader, boundary string, limits Limits) Result[*MultipartForm] {
	return parseMultipart(r, boundary, limits, true)
}

func parseMultipart(r io.Reader, boundary string, limits Limits, streaming bool) Result[*MultipartForm] {
	if boundary == "" {
		return fail[*MultipartForm](ParseFailure, "missing multipart boundary")
	}
	mr := newMultipartReader(r, boundary)
	mr.maxPartSize = maxOf(limits.MaxMultipartSize, limits.MaxFileSize)
	form := &MultipartForm{Values: Form{Values: map[string][]string{}}}
	var total int64
	fileCount := 0

	for {
		part, err := mr.nextPart()
		if err == io.EOF {
			break
		}
		if err == errTooLarge {
			form.RemoveAll()
			return fail[*MultipartForm](BodyTooLarge, tooLargeErr("multipart part", mr.maxPartSize).Error())
		}
		if err != nil {
			form.RemoveAll()
			return fail[*MultipartForm](ParseFailure, err.Error())
		}

		name, filename := part.formName, part.filename
		if name == "" {
			continue
		}

		if filename == "" {
			data, n, err := readPartCapped(part, limits.MaxMultipartSize-total)
			total += n
			if err == errTooLarge {
				form.RemoveAll()
				return fail[*MultipartForm](BodyTooLarge, tooLargeErr("multipart body", limits.MaxMultipartSize).Error())
			}
			if err != nil {
				form.RemoveAll()
				return fail[*MultipartForm](ParseFailure, err.Error())
			}
			form.Values.Values[name] = append(form.Values.Values[name], string(data))
			continue
		}

		fileCount++
		if fileCount > limits.MaxFileCount {
			form.RemoveAll()
			return fail[*MultipartForm](BodyTooLarge, fmt.Sprintf("body: multipart file count exceeds limit of %d", limits.MaxFileCount))
		}
		contentType := part.contentType
		if !limits.allowsFileType(contentType) {
			form.RemoveAll()
			return fail[*MultipartForm](UnsupportedContentType, fmt.Sprintf("body: file content type %q is not allowed", contentType))
		}

		upload := &FileUpload{FieldName: name, Filename: filename, ContentType: contentType}
		if streaming {
			n, path, err := spoolToTemp(part, limits.MaxFileSize, limits.UploadTempDir)
			if err == errTooLarge {
				form.RemoveAll()
				return fail[*MultipartForm](BodyTooLarge, tooLargeErr("file part", limits.MaxFileSize).Error())
			}
			if err != nil {
				form.RemoveAll()
				return fail[*MultipartForm](ParseFailure, err.Error())
			}
			upload.tempPath = path
			upload.Size = n
		} else {
			data, n, err := readPartCapped(part, limits.MaxFileSize)
			if err == errTooLarge {
				form.RemoveAll()
				return fail[*MultipartForm](BodyTooLarge, tooLargeErr("file part", limits.MaxFileSize).Error())
			}
			if err != nil {
				form.RemoveAll()
				return fail[*MultipartForm](ParseFailure, err.Error())
			}
			upload.data = data
			upload.Size = n
		}
		total += upload.Size
		if total > limits.MaxMultipartSize {
			form.RemoveAll()
			return fail[*MultipartForm](BodyTooLarge, tooLargeErr("multipart body", limits.MaxMultipartSize).Error())
		}
		form.Files = append(form.Files, upload)
	}
	return ok(form)
}

func readPartCapped(r io.Reader, limit int64) ([]byte, int64, error) {
	if limit < 0 {
		limit = 0
	}
	data, err := readLimited(r, limit)
	return data, int64(len(data)), err
}

func spoolToTemp(r io.Reader, limit int64, dir string) (int64, string, error) {
	f, err := os.CreateTemp(dir, "spider-upload-*")
	if err != nil {
		return 0, "", err
	}
	defer f.Close()
	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if err != nil {
		os.Remove(f.Name())
		return 0, "", err
	}
	if n > limit {
		os.Remove(f.Name())
		return 0, "", errTooLarge
	}
	return n, f.Name(), nil
}

// multipartReader scans a boundary-delimited stream, per spec.md §4.5:
// read each part's headers until a blank line, then its body up to the
// next "CRLF--boundary" marker. Adapted from the teacher's mime package
// scanning model into a minimal, dependency-free reader.
type multipartReader struct {
	br          *bufio.Reader
	boundary    []byte
	started     bool
	done        bool
	maxPartSize int64
}

func maxOf(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func newMultipartReader(r io.Reader, boundary string) *multipartReader {
	return &multipartReader{br: bufio.NewReaderSize(r, 4096), boundary: []byte("--" + boundary)}
}

type multipartPart struct {
	formName    string
	filename    string
	contentType string
	r           io.Reader
}

func (p *multipartPart) Read(buf []byte) (int, error) { return p.r.Read(buf) }

func (mr *multipartReader) nextPart() (*multipartPart, error) {
	if mr.done {
		return nil, io.EOF
	}
	if !mr.started {
		mr.started = true
		line, err := mr.br.ReadSlice('\n')
		if err != nil {
			return nil, fmt.Errorf("body: reading multipart preamble: %w", err)
		}
		if !bytes.HasPrefix(bytes.TrimRight(line, "\r\n"), mr.boundary) {
			return nil, fmt.Errorf("body: multipart message missing leading boundary")
		}
	}

	header := hdrMap{}
	for {
		line, err := mr.br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("body: reading part headers: %w", err)
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			break
		}
		colon := strings.IndexByte(trimmed, ':')
		if colon < 0 {
			continue
		}
		key := strings.TrimSpace(trimmed[:colon])
		val := strings.TrimSpace(trimmed[colon+1:])
		header[strings.ToLower(key)] = val
	}

	body, terminal, err := mr.readPartBody()
	if err != nil {
		return nil, err
	}
	mr.done = terminal

	disposition := header["content-disposition"]
	name, filename := parseContentDisposition(disposition)
	return &multipartPart{
		formName:    name,
		filename:    filename,
		contentType: header["content-type"],
		r:           bytes.NewReader(body),
	}, nil
}

// readPartBody reads until the next boundary marker, returning the body
// bytes and whether the boundary was the terminal "--boundary--".
func (mr *multipartReader) readPartBody() ([]byte, bool, error) {
	var buf bytes.Buffer
	limit := mr.maxPartSize
	if limit <= 0 {
		limit = 1 << 20
	}
	for {
		line, err := mr.br.ReadBytes('\n')
		if err != nil && len(line) == 0 {
			return nil, false, fmt.Errorf("body: unexpected end of multipart body: %w", err)
		}
		trimmed := bytes.TrimRight(line, "\r\n")
		if bytes.HasPrefix(trimmed, mr.boundary) {
			rest := trimmed[len(mr.boundary):]
			return trimBufferTrailingCRLF(buf.Bytes()), bytes.HasPrefix(rest, []byte("--")), nil
		}
		buf.Write(line)
		if int64(buf.Len()) > limit {
			return nil, false, errTooLarge
		}
		if err == io.EOF {
			return nil, false, fmt.Errorf("body: unexpected end of multipart body")
		}
	}
}

func trimBufferTrailingCRLF(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\r\n"))
	b = bytes.TrimSuffix(b, []byte("\n"))
	return b
}

type hdrMap map[string]string

// parseContentDisposition extracts the "name" and "filename" parameters
// from a Content-Disposition header value, per RFC 2183.
func parseContentDisposition(v string) (name, filename string) {
	parts := strings.Split(v, ";")
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		eq := strings.IndexByte(p, '=')
		if eq < 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(p[:eq]))
		val := strings.Trim(strings.TrimSpace(p[eq+1:]), `"`)
		switch key {
		case "name":
			name = val
		case "filename":
			filename = val
		}
	}
	return name, filename
}

// BoundaryFromContentType extracts the "boundary" parameter from a
// multipart Content-Type header value.
func BoundaryFromContentType(contentType string) string {
	parts := strings.Split(contentType, ";")
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(strings.ToLower(p), "boundary=") {
			return strings.Trim(p[len("boundary="):], `"`)
		}
	}
	return ""
}
