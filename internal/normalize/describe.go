package normalize

import (
	"strings"

	"github.com/soc-intake/internal/domain"
)

// Detail is one labeled line of the technical section.
type Detail struct {
	Label string
	Value string
}

// TechnicalDetails lists the technical section of inc in its fixed order.
func TechnicalDetails(inc *domain.CanonicalIncident) []Detail {
	return []Detail{
		{"ID de Incidente", inc.IncidentID},
		{"Regla Disparada", inc.RuleName},
		{"Categoría", inc.Category},
		{"Dispositivo Afectado", inc.SourceHost},
		{"IP Origen", inc.SourceIP},
		{"IP Destino", inc.DestinationIP},
		{"Usuario", inc.User},
		{"URL", inc.URL},
		{"Hostname", inc.Hostname},
		{"Acción de Firewall", inc.FirewallAction},
		{"ID de Política", inc.PolicyID},
		{"Bytes Enviados", inc.SentBytes},
		{"Bytes Recibidos", inc.ReceivedBytes},
		{"Remediación Sugerida", inc.Remediation},
	}
}

// ComposeDescription renders the ticket body: the event description
// followed by every technical detail that carries a value.
func ComposeDescription(description string, details []Detail) string {
	var b strings.Builder
	b.WriteString("**Descripción del Evento:**\n")
	b.WriteString(description)
	b.WriteString("\n\n**Detalles Técnicos:**\n")

	for _, d := range details {
		if !hasValue(d.Value) {
			continue
		}
		b.WriteString("**")
		b.WriteString(d.Label)
		b.WriteString(":** ")
		b.WriteString(d.Value)
		b.WriteString("\n")
	}

	return strings.TrimSpace(b.String())
}

func hasValue(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != domain.NotAvailable
}
