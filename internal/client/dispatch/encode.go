package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"ojclient/internal/api"
	"ojclient/internal/client/transport"
	appErr "ojclient/pkg/errors"
)

// encodeRequest builds the wire request: multipart payloads go out as form data on any
// verb, GET payloads become the query string and the rest a JSON body.
func encodeRequest(sig api.Signature, payload any) (transport.Request, error) {
	req := transport.Request{Method: strings.ToUpper(sig.Method), Path: sig.Path}
	switch p := payload.(type) {
	case nil, api.NoPayload, *api.NoPayload:
		return req, nil
	case api.Multipart:
		body, contentType, err := encodeMultipart(p.Parts())
		if err != nil {
			return req, appErr.Wrapf(err, appErr.RequestBuild, "encode multipart for %s: %v", sig, err)
		}
		req.Body = body
		req.ContentType = contentType
		return req, nil
	}

	if req.Method == http.MethodGet {
		query, err := encodeQuery(payload)
		if err != nil {
			return req, appErr.Wrapf(err, appErr.RequestBuild, "encode query for %s: %v", sig, err)
		}
		req.Query = query
		return req, nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return req, appErr.Wrapf(err, appErr.RequestBuild, "encode body for %s: %v", sig, err)
	}
	req.Body = body
	req.ContentType = "application/json"
	return req, nil
}

// encodeQuery flattens the JSON form of payload into query parameters. Null fields are
// omitted, arrays repeat the key and objects are sent as JSON text.
func encodeQuery(payload any) (url.Values, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("query payload must encode as a JSON object: %w", err)
	}
	values := url.Values{}
	for key, value := range fields {
		switch v := value.(type) {
		case nil:
		case []any:
			for _, item := range v {
				s, err := queryValue(item)
				if err != nil {
					return nil, err
				}
				values.Add(key, s)
			}
		default:
			s, err := queryValue(v)
			if err != nil {
				return nil, err
			}
			values.Set(key, s)
		}
	}
	return values, nil
}

func queryValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeMultipart(parts []api.Part) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, part := range parts {
		header := make(textproto.MIMEHeader)
		disposition := fmt.Sprintf(`form-data; name="%s"`, quoteEscaper.Replace(part.Name))
		if part.FileName != "" {
			disposition += fmt.Sprintf(`; filename="%s"`, quoteEscaper.Replace(part.FileName))
			contentType := part.ContentType
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			header.Set("Content-Type", contentType)
		}
		header.Set("Content-Disposition", disposition)
		pw, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := pw.Write(part.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
