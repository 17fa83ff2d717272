package llm

import "context"

// Provider é a capacidade única que a orquestração consome: enviar um
// prompt e receber o texto bruto da conclusão. Cada chamada é independente;
// amostras repetidas do mesmo prompt são responsabilidade do chamador.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}
