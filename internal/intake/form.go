package intake

import (
	"bytes"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/PYTHTRADER/findtrader/internal/apperr"
	"github.com/PYTHTRADER/findtrader/internal/model"
)

// Submission form field names.
const (
	FieldFullName = "fullName"
	FieldEmail    = "email"
	FieldCategory = "category"
	FieldCity     = "city"
	FieldMobile   = "mobile"
	FieldBroker   = "broker"
	FieldStrategy = "strategy"
	FieldAPIKey   = "apiKey"
)

var allowedProofTypes = map[string]string{
	"application/pdf": "application/pdf",
	"image/png":       "image/png",
	"image/jpeg":      "image/jpeg",
	"image/jpg":       "image/jpeg",
}

// Attachment is the fully materialized proof file.
type Attachment struct {
	FieldName   string
	Filename    string
	ContentType string
	Data        []byte
}

// Form is the parsed submission body. Repeated text fields keep the last value.
type Form struct {
	Fields     map[string]string
	Attachment *Attachment
}

// Get returns the trimmed value of a text field.
func (f *Form) Get(name string) string {
	return strings.TrimSpace(f.Fields[name])
}

// Collect drains p into a Form. On error the partial attachment is dropped.
func Collect(p *Parser) (*Form, error) {
	form := &Form{Fields: make(map[string]string)}
	var data bytes.Buffer
	var att *Attachment

	for {
		ev, err := p.Next()
		if err != nil {
			return nil, err
		}
		switch ev.Kind {
		case EventField:
			form.Fields[ev.Name] = ev.Value
		case EventAttachmentChunk:
			if att == nil {
				att = &Attachment{FieldName: ev.Name, Filename: ev.Filename, ContentType: ev.ContentType}
			}
			data.Write(ev.Chunk)
		case EventAttachmentComplete:
			if att == nil {
				att = &Attachment{FieldName: ev.Name, Filename: ev.Filename, ContentType: ev.ContentType}
			}
			att.Data = data.Bytes()
			form.Attachment = att
		case EventComplete:
			return form, nil
		}
	}
}

// Validate checks required fields, the category and the proof file type.
// A generic declared type is replaced by the sniffed one when that is allowed.
func (f *Form) Validate() error {
	var missing []string
	for _, name := range []string{FieldFullName, FieldEmail, FieldCategory} {
		if f.Get(name) == "" {
			missing = append(missing, name)
		}
	}
	if f.Attachment == nil || len(f.Attachment.Data) == 0 {
		missing = append(missing, "proof file")
	}
	if len(missing) > 0 {
		return apperr.New(apperr.InvalidSubmission, "missing required fields: "+strings.Join(missing, ", "))
	}
	if err := f.checkText(); err != nil {
		return err
	}

	cat, ok := model.ParseCategory(f.Get(FieldCategory))
	if !ok {
		return apperr.New(apperr.InvalidSubmission, "category is not supported")
	}
	f.Fields[FieldCategory] = string(cat)

	ct, ok := proofContentType(f.Attachment)
	if !ok {
		return apperr.New(apperr.InvalidSubmission, "proof file must be a PDF, PNG or JPEG")
	}
	f.Attachment.ContentType = ct
	return nil
}

// checkText rejects values the record store cannot hold as text.
func (f *Form) checkText() error {
	names := make([]string, 0, len(f.Fields))
	for name := range f.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v := f.Fields[name]
		if !utf8.ValidString(v) || strings.ContainsRune(v, 0) {
			return apperr.New(apperr.InvalidSubmission, name+" contains invalid characters")
		}
	}
	return nil
}

func proofContentType(a *Attachment) (string, bool) {
	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(a.ContentType, ";", 2)[0]))
	if ct, ok := allowedProofTypes[declared]; ok {
		return ct, true
	}
	if declared != "" && declared != "application/octet-stream" {
		return "", false
	}
	sniffed := strings.SplitN(http.DetectContentType(a.Data), ";", 2)[0]
	ct, ok := allowedProofTypes[sniffed]
	return ct, ok
}
