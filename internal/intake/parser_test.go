package intake

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PYTHTRADER/findtrader/internal/apperr"
)

var testLimits = Limits{MaxAttachmentBytes: 10 << 20, MaxFieldBytes: 64 << 10}

type part struct {
	name        string
	filename    string
	contentType string
	data        []byte
}

func buildBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, w.WriteField(p.name, string(p.data)))
			continue
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+p.name+`"; filename="`+p.filename+`"`)
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func field(name, value string) part { return part{name: name, data: []byte(value)} }

func pdf(size int) []byte {
	b := bytes.Repeat([]byte{'x'}, size)
	copy(b, "%PDF-1.7\n")
	return b
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func TestNewParser_RejectsBadContentType(t *testing.T) {
	tests := []string{"", "application/json", "multipart/form-data", "text/plain; boundary=x"}
	for _, ct := range tests {
		_, err := NewParser(context.Background(), strings.NewReader(""), ct, testLimits)
		require.Error(t, err, ct)
		assert.Equal(t, apperr.MalformedRequest, apperr.KindOf(err))
	}
}

func TestParser_EventSequence(t *testing.T) {
	body, ct := buildBody(t,
		field("fullName", "Rahul Sharma"),
		part{name: "proof", filename: "statement.pdf", contentType: "application/pdf", data: pdf(100 << 10)},
		field("email", "r@x.com"),
	)

	p, err := NewParser(context.Background(), body, ct, testLimits)
	require.NoError(t, err)

	var kinds []EventKind
	var total int
	for {
		ev, err := p.Next()
		require.NoError(t, err)
		if len(kinds) == 0 || kinds[len(kinds)-1] != ev.Kind {
			kinds = append(kinds, ev.Kind)
		}
		if ev.Kind == EventAttachmentChunk {
			total += len(ev.Chunk)
			assert.Equal(t, "statement.pdf", ev.Filename)
			assert.LessOrEqual(t, len(ev.Chunk), chunkSize)
		}
		if ev.Kind == EventAttachmentComplete {
			assert.Equal(t, int64(100<<10), ev.Size)
		}
		if ev.Kind == EventComplete {
			break
		}
	}

	assert.Equal(t, []EventKind{EventField, EventAttachmentChunk, EventAttachmentComplete, EventField, EventComplete}, kinds)
	assert.Equal(t, 100<<10, total)

	ev, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, EventComplete, ev.Kind)
}

func TestParser_AttachmentOverLimitAbortsEarly(t *testing.T) {
	body, ct := buildBody(t,
		field("fullName", "Rahul"),
		part{name: "proof", filename: "big.pdf", contentType: "application/pdf", data: pdf(20 << 20)},
	)
	total := int64(body.Len())
	cr := &countingReader{r: body}

	p, err := NewParser(context.Background(), cr, ct, testLimits)
	require.NoError(t, err)

	_, err = Collect(p)
	require.Error(t, err)
	assert.Equal(t, apperr.PayloadTooLarge, apperr.KindOf(err))
	assert.Less(t, cr.n, int64(11<<20))
	assert.Greater(t, total, int64(20<<20))

	_, again := p.Next()
	assert.Equal(t, err, again)
}

func TestParser_AttachmentExactlyAtLimit(t *testing.T) {
	body, ct := buildBody(t, part{name: "proof", filename: "a.pdf", contentType: "application/pdf", data: pdf(10 << 20)})
	p, err := NewParser(context.Background(), body, ct, testLimits)
	require.NoError(t, err)

	form, err := Collect(p)
	require.NoError(t, err)
	assert.Len(t, form.Attachment.Data, 10<<20)
}

func TestParser_FieldOverLimit(t *testing.T) {
	body, ct := buildBody(t, field("strategy", strings.Repeat("a", 64<<10+1)))
	p, err := NewParser(context.Background(), body, ct, testLimits)
	require.NoError(t, err)

	_, err = Collect(p)
	assert.Equal(t, apperr.PayloadTooLarge, apperr.KindOf(err))
}

func TestParser_SecondAttachmentRejected(t *testing.T) {
	body, ct := buildBody(t,
		part{name: "proof", filename: "a.pdf", contentType: "application/pdf", data: pdf(10)},
		part{name: "proof2", filename: "b.pdf", contentType: "application/pdf", data: pdf(10)},
	)
	p, err := NewParser(context.Background(), body, ct, testLimits)
	require.NoError(t, err)

	_, err = Collect(p)
	assert.Equal(t, apperr.InvalidSubmission, apperr.KindOf(err))
}

func TestParser_TruncatedBody(t *testing.T) {
	body, ct := buildBody(t,
		field("fullName", "Rahul"),
		part{name: "proof", filename: "a.pdf", contentType: "application/pdf", data: pdf(4096)},
	)
	truncated := bytes.NewReader(body.Bytes()[:body.Len()-200])

	p, err := NewParser(context.Background(), truncated, ct, testLimits)
	require.NoError(t, err)

	_, err = Collect(p)
	require.Error(t, err)
	assert.Equal(t, apperr.MalformedRequest, apperr.KindOf(err))
}

func TestParser_GarbageBody(t *testing.T) {
	p, err := NewParser(context.Background(), strings.NewReader("not multipart at all"), "multipart/form-data; boundary=abc", testLimits)
	require.NoError(t, err)

	_, err = p.Next()
	assert.Equal(t, apperr.MalformedRequest, apperr.KindOf(err))
}

func TestParser_CanceledContextDropsAttachment(t *testing.T) {
	body, ct := buildBody(t,
		part{name: "proof", filename: "a.pdf", contentType: "application/pdf", data: pdf(1 << 20)},
	)
	ctx, cancel := context.WithCancel(context.Background())
	p, err := NewParser(ctx, body, ct, testLimits)
	require.NoError(t, err)

	ev, err := p.Next()
	require.NoError(t, err)
	require.Equal(t, EventAttachmentChunk, ev.Kind)

	cancel()
	_, err = p.Next()
	require.Error(t, err)
	assert.Equal(t, apperr.MalformedRequest, apperr.KindOf(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, p.part)
	assert.Nil(t, p.buf)
}

func TestCollect_LastWriteWins(t *testing.T) {
	body, ct := buildBody(t,
		field("city", "Pune"),
		field("city", "Mumbai"),
	)
	p, err := NewParser(context.Background(), body, ct, testLimits)
	require.NoError(t, err)

	form, err := Collect(p)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", form.Get("city"))
	assert.Nil(t, form.Attachment)
}

func TestEventKindString(t *testing.T) {
	assert.Equal(t, "attachment_chunk", EventAttachmentChunk.String())
	assert.Equal(t, "unknown", EventKind(0).String())
}
