package model

// Priority é o conjunto fechado de prioridades aceitas pelo TeamSync
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ValidPriority verifica se o token (já em minúsculas) pertence ao enum
func ValidPriority(p string) bool {
	switch Priority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// EstimationRequest é a entrada imutável de uma rodada de estimativa
type EstimationRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description" binding:"required"`
	ProjectID    int    `json:"project_id" binding:"required"`
	ParentTaskID *int   `json:"parent_task_id"`
}

// ExampleTask é o snapshot somente-leitura usado no few-shot do prompt
type ExampleTask struct {
	Title        string
	Description  string
	Priority     string
	TimeEstimate string
}

// ParsedEstimate é o resultado de parsear UMA resposta do LLM.
// Só existe se os três campos foram extraídos e validados.
type ParsedEstimate struct {
	Priority           string
	EstimatedTimeHours float64
	Comment            string
}

// AggregatedEstimate é o resultado agregado por votação majoritária
type AggregatedEstimate struct {
	Priority      string `json:"priority"`
	EstimatedTime string `json:"estimated_time"`
	Comment       string `json:"comment"`
}
