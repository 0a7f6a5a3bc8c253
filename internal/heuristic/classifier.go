package heuristic

import (
	"strings"

	"email-classifier/internal/model"
)

// Substrings that mark an email as needing action. Matching is substring containment, so "erro" also
// hits "erroneamente".
var productiveKeywords = []string{
	"solicit", "ajuda", "erro", "problema", "requis", "ticket", "urgente",
	"pedido", "venda", "contrato", "fatura", "pagamento", "backup", "status",
	"atualização", "atualizar", "suporte", "instalar", "configurar", "alterar",
	"consulta", "pergunta", "dúvida", "duvida", "config", "falha",
}

// Keywords returns a copy of the productive keyword list.
func Keywords() []string {
	out := make([]string, len(productiveKeywords))
	copy(out, productiveKeywords)
	return out
}

// Score counts the keywords contained in normalized text. Each keyword counts once.
func Score(normalized string) int {
	score := 0
	for _, kw := range productiveKeywords {
		if strings.Contains(normalized, kw) {
			score++
		}
	}
	return score
}

// Classify labels normalized text.
func Classify(normalized string) model.Category {
	if Score(normalized) >= 1 {
		return model.CategoryProductive
	}
	return model.CategoryUnproductive
}
