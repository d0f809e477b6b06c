package normalize

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/soc-intake/internal/domain"
)

var (
	// rawEventsPattern matches the embedded event block. Its content is
	// free-form device output and routinely breaks XML well-formedness.
	rawEventsPattern = regexp.MustCompile(`(?s)<rawEvents>(.*?)</rawEvents>`)

	bracketHostPattern = regexp.MustCompile(`\[hostName\]=([^,\]]+)`)
)

// Entry names inside <incidentTarget>.
const (
	entryHostIP        = "Host IP"
	entryHostName      = "Host Name"
	entryDestinationIP = "Destination IP"
)

type xmlIncident struct {
	IncidentID *string `xml:"incidentId,attr"`
	Severity   *string `xml:"severity,attr"`
	Category   *string `xml:"incidentCategory,attr"`

	Name        *string    `xml:"name"`
	Description *string    `xml:"description"`
	Remediation *string    `xml:"remediation"`
	DisplayTime *string    `xml:"displayTime"`
	Target      *xmlTarget `xml:"incidentTarget"`
}

type xmlTarget struct {
	Entries []xmlEntry `xml:"entry"`
}

type xmlEntry struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// ExciseRawEvents removes every <rawEvents> block from doc and returns the
// trimmed content of the first one alongside the remaining document.
func ExciseRawEvents(doc string) (rawLog, rest string) {
	m := rawEventsPattern.FindStringSubmatch(doc)
	if m == nil {
		return "", doc
	}
	return strings.TrimSpace(m[1]), rawEventsPattern.ReplaceAllString(doc, "")
}

// ParseXML extracts incident fields from a FortiSIEM XML document.
func ParseXML(doc string) (XMLFields, error) {
	rawLog, rest := ExciseRawEvents(doc)

	var inc xmlIncident
	dec := xml.NewDecoder(strings.NewReader(rest))
	// Input is already decoded text; ignore any encoding declaration.
	dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) {
		return r, nil
	}
	if err := dec.Decode(&inc); err != nil {
		return XMLFields{}, &domain.MalformedFormatError{Diagnostic: err}
	}
	if err := expectDocumentEnd(dec); err != nil {
		return XMLFields{}, &domain.MalformedFormatError{Diagnostic: err}
	}

	fields := XMLFields{
		Common: Common{
			IncidentID:  attrField(inc.IncidentID),
			RawSeverity: attrField(inc.Severity),
			RawCategory: attrField(inc.Category),
			RuleName:    textField(inc.Name),
			Description: textField(inc.Description),
			Remediation: textField(inc.Remediation),
			RawLog:      rawLog,
		},
		DisplayTime: textField(inc.DisplayTime),
	}

	if inc.Target != nil {
		for _, e := range inc.Target.Entries {
			v := strings.TrimSpace(e.Value)
			if v == "" {
				continue
			}
			switch e.Name {
			case entryHostIP:
				fields.SourceIP = Present(v)
			case entryHostName:
				fields.SourceHost = Present(v)
			case entryDestinationIP:
				fields.DestinationIP = Present(v)
			}
		}
	}

	if host, ok := fields.SourceHost.Get(); (!ok || host == domain.NotAvailable) && rawLog != "" {
		if m := bracketHostPattern.FindStringSubmatch(rawLog); m != nil {
			fields.SourceHost = Present(strings.TrimSpace(m[1]))
		}
	}

	return fields, nil
}

// expectDocumentEnd rejects anything but whitespace, comments and
// processing instructions after the root element.
func expectDocumentEnd(dec *xml.Decoder) error {
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			return fmt.Errorf("junk after document element: <%s>", t.Name.Local)
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errors.New("junk after document element: text")
			}
		}
	}
}

func attrField(v *string) Field {
	if v == nil {
		return Missing
	}
	return Present(*v)
}

func textField(v *string) Field {
	if v == nil {
		return Missing
	}
	return Present(strings.TrimSpace(*v))
}
