package heuristic

import "email-classifier/internal/model"

const (
	ProductiveReply = "Olá — recebi sua mensagem. " +
		"Obrigado por reportar. Vamos analisar e em breve retornaremos com uma solução ou próximos passos. " +
		"Se possível, envie mais detalhes (prints, passos para reproduzir, ambiente)."
	UnproductiveReply = "Obrigado pela mensagem! Agradecemos seu contato — vamos registrar aqui."
)

// Reply returns the template reply for a category.
func Reply(category model.Category) string {
	if category == model.CategoryProductive {
		return ProductiveReply
	}
	return UnproductiveReply
}

// ClassifyText runs the whole local pipeline on raw text.
func ClassifyText(raw string) *model.ClassificationResult {
	category := Classify(Normalize(raw))
	return &model.ClassificationResult{
		Category:       category,
		SuggestedReply: Reply(category),
	}
}
