// Package intake reads the multipart submission body.
//
// Parser is pull-based: the caller drives it with Next and receives one Event
// per call, so reads happen only as fast as the caller consumes them and
// cancellation is checked between reads.
package intake

import (
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"

	"github.com/PYTHTRADER/findtrader/internal/apperr"
)

const chunkSize = 32 << 10

// EventKind identifies what a call to Next produced.
type EventKind int

const (
	// EventField carries one complete text field.
	EventField EventKind = iota + 1
	// EventAttachmentChunk carries the next slice of the attachment bytes.
	EventAttachmentChunk
	// EventAttachmentComplete marks the end of the attachment part.
	EventAttachmentComplete
	// EventComplete marks the end of the body. Further calls keep returning it.
	EventComplete
)

func (k EventKind) String() string {
	switch k {
	case EventField:
		return "field"
	case EventAttachmentChunk:
		return "attachment_chunk"
	case EventAttachmentComplete:
		return "attachment_complete"
	case EventComplete:
		return "complete"
	}
	return "unknown"
}

// Event is produced by Parser.Next. Chunk is only valid until the next call.
type Event struct {
	Kind        EventKind
	Name        string
	Value       string
	Filename    string
	ContentType string
	Chunk       []byte
	Size        int64
}

// Limits caps what the parser accepts.
type Limits struct {
	MaxAttachmentBytes int64
	MaxFieldBytes      int64
}

// Parser walks a multipart/form-data body part by part.
type Parser struct {
	ctx    context.Context
	mr     *multipart.Reader
	limits Limits
	buf    []byte

	part        *multipart.Part
	filename    string
	contentType string
	attachSize  int64
	attachSeen  bool
	done        bool
	err         error
}

// NewParser validates the content type and prepares to read body.
func NewParser(ctx context.Context, body io.Reader, contentType string, limits Limits) (*Parser, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "multipart/form-data" {
		return nil, apperr.New(apperr.MalformedRequest, "content type must be multipart/form-data")
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, apperr.New(apperr.MalformedRequest, "multipart boundary is missing")
	}
	return &Parser{
		ctx:    ctx,
		mr:     multipart.NewReader(body, boundary),
		limits: limits,
		buf:    make([]byte, chunkSize),
	}, nil
}

// Next returns the next event or a classified error. Once an error is
// returned every later call returns the same error.
func (p *Parser) Next() (Event, error) {
	if p.err != nil {
		return Event{}, p.err
	}
	if p.done {
		return Event{Kind: EventComplete}, nil
	}
	if err := p.ctx.Err(); err != nil {
		return p.fail(apperr.Wrap(err, apperr.MalformedRequest, "request was canceled"))
	}

	if p.part != nil {
		return p.readAttachment()
	}

	for {
		part, err := p.mr.NextPart()
		if err == io.EOF {
			p.done = true
			return Event{Kind: EventComplete}, nil
		}
		if err != nil {
			return p.fail(apperr.Wrap(err, apperr.MalformedRequest, "malformed multipart body"))
		}

		name := part.FormName()
		if name == "" {
			part.Close()
			continue
		}

		if part.FileName() != "" {
			if p.attachSeen {
				part.Close()
				return p.fail(apperr.New(apperr.InvalidSubmission, "only one proof file may be attached"))
			}
			p.attachSeen = true
			p.part = part
			p.filename = part.FileName()
			p.contentType = part.Header.Get("Content-Type")
			return p.readAttachment()
		}

		return p.readField(name, part)
	}
}

func (p *Parser) readField(name string, part *multipart.Part) (Event, error) {
	defer part.Close()

	max := p.limits.MaxFieldBytes
	var r io.Reader = part
	if max > 0 {
		r = io.LimitReader(part, max+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return p.fail(apperr.Wrap(err, apperr.MalformedRequest, "malformed multipart body"))
	}
	if max > 0 && int64(len(b)) > max {
		return p.fail(apperr.New(apperr.PayloadTooLarge, "field "+name+" is too large"))
	}
	return Event{Kind: EventField, Name: name, Value: string(b)}, nil
}

func (p *Parser) readAttachment() (Event, error) {
	n, err := p.part.Read(p.buf)
	if n > 0 {
		p.attachSize += int64(n)
		if p.limits.MaxAttachmentBytes > 0 && p.attachSize > p.limits.MaxAttachmentBytes {
			return p.fail(apperr.New(apperr.PayloadTooLarge,
				fmt.Sprintf("proof file exceeds the %d MiB limit", p.limits.MaxAttachmentBytes>>20)))
		}
		return Event{
			Kind:        EventAttachmentChunk,
			Name:        p.part.FormName(),
			Filename:    p.filename,
			ContentType: p.contentType,
			Chunk:       p.buf[:n],
			Size:        p.attachSize,
		}, nil
	}
	if err == io.EOF {
		ev := Event{
			Kind:        EventAttachmentComplete,
			Name:        p.part.FormName(),
			Filename:    p.filename,
			ContentType: p.contentType,
			Size:        p.attachSize,
		}
		p.part.Close()
		p.part = nil
		return ev, nil
	}
	if err != nil {
		return p.fail(apperr.Wrap(err, apperr.MalformedRequest, "malformed multipart body"))
	}
	return p.readAttachment()
}

// fail releases the in-flight part and buffer and pins err as the result of later calls.
func (p *Parser) fail(err error) (Event, error) {
	if p.part != nil {
		p.part.Close()
		p.part = nil
	}
	p.err = err
	p.buf = nil
	return Event{}, err
}
