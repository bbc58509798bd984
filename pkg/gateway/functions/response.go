package functions

import (
	"strings"

	"mercator-hq/gateway/pkg/gateway"
	"mercator-hq/gateway/pkg/message"
)

// SetResponseContent writes the response body and, for http responses,
// the content type. Both are expanded as templates.
type SetResponseContent struct {
	gateway.Base
	content     string
	contentType string
	statusCode  int
}

// NewSetResponseContent creates the function. An empty content type
// leaves the header untouched and a zero status code leaves the status.
func NewSetResponseContent(name, content, contentType string, statusCode int) *SetResponseContent {
	return &SetResponseContent{
		Base:        gateway.NewBase(nameOr(name, "SetResponseContent")),
		content:     content,
		contentType: contentType,
		statusCode:  statusCode,
	}
}

func (f *SetResponseContent) Execute(ec *gateway.ExecutionContext) gateway.Result {
	resp := ec.Response()
	resp.SetBody(ec.Parse(f.content))
	if !resp.IsHTTP() {
		return gateway.Succeeded()
	}

	if f.contentType != "" {
		ct := ec.Parse(f.contentType)
		if !strings.Contains(strings.ToLower(ct), "charset=") {
			ct += "; charset=utf-8"
		}
		if err := resp.Headers().Set(message.HeaderContentType, ct); err != nil {
			gateway.Fatal(f, "set content type", err)
		}
	}
	if f.statusCode != 0 {
		if h := ec.Transport().HTTP(); h != nil {
			h.SetResponseStatusCode(f.statusCode)
		}
	}
	return gateway.Succeeded()
}

// SetHeader sets a response header.
type SetHeader struct {
	gateway.Base
	header string
	value  string
}

func NewSetHeader(name, header, value string) *SetHeader {
	return &SetHeader{
		Base:   gateway.NewBase(nameOr(name, "SetHeader")),
		header: header,
		value:  value,
	}
}

func (f *SetHeader) Execute(ec *gateway.ExecutionContext) gateway.Result {
	header := ec.Parse(f.header)
	if header == "" {
		return gateway.Failed(nil, "header name not set")
	}
	if err := ec.Response().Headers().Set(header, ec.Parse(f.value)); err != nil {
		gateway.Fatal(f, "set header", err)
	}
	return gateway.Succeeded()
}
