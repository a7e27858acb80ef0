// Package intent derives a coarse purpose label from customer messages.
package intent

import "strings"

// Label identifies what a customer message is asking for.
type Label string

const (
	PriceInquiry   Label = "price_inquiry"
	ServiceInquiry Label = "service_inquiry"
	Scheduling     Label = "scheduling"
	ContactInfo    Label = "contact_info"
	GeneralInquiry Label = "general_inquiry"
)

// Buckets are evaluated in declaration order and the first hit wins.
// Price phrasing is checked before service phrasing so that
// "quanto custa o serviço X" lands on price_inquiry.
var priorityBuckets = []struct {
	label    Label
	keywords []string
}{
	{PriceInquiry, []string{"quanto", "preço", "valor", "custa", "sai"}},
	{ServiceInquiry, []string{"serviço", "fazem", "faz", "tipo"}},
	{Scheduling, []string{"agendar", "horário", "agenda", "vaga", "marcar"}},
	{ContactInfo, []string{"endereço", "localização", "contato", "telefone"}},
}

// Classify lowercases the message and tests the keyword buckets in fixed
// priority order. Messages matching no bucket are general inquiries.
func Classify(message string) Label {
	normalized := strings.ToLower(message)

	for _, bucket := range priorityBuckets {
		for _, keyword := range bucket.keywords {
			if strings.Contains(normalized, keyword) {
				return bucket.label
			}
		}
	}

	return GeneralInquiry
}
