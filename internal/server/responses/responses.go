package responses

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/mdsite/internal/logfields"
)

// ContentType is a supported response media type.
type ContentType string

const (
	TypeHTML ContentType = "text/html"
	TypeXML  ContentType = "text/xml"
	TypeJSON ContentType = "application/json"
)

// Context carries the response mode of one request.
type Context struct {
	ContentType ContentType
}

// HTML, XML and JSON are ready-made contexts.
var (
	HTML = Context{ContentType: TypeHTML}
	XML  = Context{ContentType: TypeXML}
	JSON = Context{ContentType: TypeJSON}
)

// Type returns the effective content type; anything unsupported becomes HTML.
func (c Context) Type() ContentType {
	switch c.ContentType {
	case TypeHTML, TypeXML, TypeJSON:
		return c.ContentType
	default:
		return TypeHTML
	}
}

func (c Context) header() string {
	return string(c.Type()) + "; charset=utf-8"
}

// ErrorBody is the JSON error payload.
type ErrorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

const (
	htmlErrorTemplate = `<!DOCTYPE html>
<html>
<head>
<style>body { text-align: center; color: #990000; font-weight: bold;}</style>
</head>
<body>%s</body>
</html>
`
	xmlErrorTemplate = `<?xml version="1.0"?>
<xml><error>%s</error></xml>
`
	htmlRedirectTemplate = `<!DOCTYPE html>
<html>
<head>
<style>body { text-align: center; font-weight: bold;}</style>
</head>
<body>%s: <a href="%s">Content is available here</a></body>
</html>
`
	xmlRedirectTemplate = `<?xml version="1.0"?>
<xml><redirect type="%s">%s</redirect></xml>
`
)

// OK writes a 200 response. JSON contexts marshal payload; the others write
// it as text when it is a string or byte slice.
func OK(w http.ResponseWriter, ctx Context, payload any) error {
	body, err := encode(ctx, payload)
	if err != nil {
		return err
	}
	return write(w, ctx, http.StatusOK, body)
}

// Error writes message with the given status in the context's format.
func Error(w http.ResponseWriter, ctx Context, code int, message string) error {
	var body []byte
	switch ctx.Type() {
	case TypeJSON:
		b, err := json.Marshal(ErrorBody{Error: message, Code: code})
		if err != nil {
			return err
		}
		body = append(b, '\n')
	case TypeXML:
		body = fmt.Appendf(nil, xmlErrorTemplate, html.EscapeString(message))
	default:
		body = fmt.Appendf(nil, htmlErrorTemplate, html.EscapeString(message))
	}
	return write(w, ctx, code, body)
}

// Redirect sends a crawler friendly redirect to location. The body names the
// status and links the target.
func Redirect(w http.ResponseWriter, ctx Context, location string, code int) error {
	text, err := StatusText(code)
	if err != nil {
		text = "Redirect"
	}
	w.Header().Set("Location", location)

	var body []byte
	switch ctx.Type() {
	case TypeJSON:
		b, jerr := json.Marshal(map[string]string{"redirect": location, "type": text})
		if jerr != nil {
			return jerr
		}
		body = append(b, '\n')
	case TypeXML:
		body = fmt.Appendf(nil, xmlRedirectTemplate, html.EscapeString(text), html.EscapeString(location))
	default:
		body = fmt.Appendf(nil, htmlRedirectTemplate, html.EscapeString(text), html.EscapeString(location))
	}
	return write(w, ctx, code, body)
}

func encode(ctx Context, payload any) ([]byte, error) {
	if ctx.Type() == TypeJSON {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(true)
		if err := enc.Encode(payload); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	switch p := payload.(type) {
	case string:
		return []byte(p), nil
	case []byte:
		return p, nil
	case fmt.Stringer:
		return []byte(p.String()), nil
	default:
		return fmt.Appendf(nil, "%v", p), nil
	}
}

func write(w http.ResponseWriter, ctx Context, code int, body []byte) error {
	w.Header().Set("Content-Type", ctx.header())
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed writing response body", logfields.Status(code), logfields.Error(err))
		return err
	}
	return nil
}
