package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cleberrangel/teamsync-api/internal/model"
)

// Padrões independentes para cada campo da resposta do LLM.
// Os três precisam casar; casamento parcial é descartado.
var (
	priorityPattern = regexp.MustCompile(`(?i)Priority:\s*(\w+)`)
	timePattern     = regexp.MustCompile(`(?i)Estimated Time:\s*([\d.]+)\s*hours`)
	commentPattern  = regexp.MustCompile(`(?is)Comment:\s*(.+)`)
)

// ParseEstimate extrai os três campos estruturados de uma resposta bruta do
// LLM. É uma função total: entrada malformada retorna ok=false, nunca panic.
// Prioridade fora do enum ou tempo não positivo também são rejeitados.
func ParseEstimate(raw string) (model.ParsedEstimate, bool) {
	var parsed model.ParsedEstimate

	priorityMatch := priorityPattern.FindStringSubmatch(raw)
	timeMatch := timePattern.FindStringSubmatch(raw)
	commentMatch := commentPattern.FindStringSubmatch(raw)

	if priorityMatch == nil || timeMatch == nil || commentMatch == nil {
		return parsed, false
	}

	priority := strings.ToLower(priorityMatch[1])
	if !model.ValidPriority(priority) {
		return parsed, false
	}

	hours, err := strconv.ParseFloat(timeMatch[1], 64)
	if err != nil || hours <= 0 {
		return parsed, false
	}

	comment := strings.TrimSpace(commentMatch[1])
	if comment == "" {
		return parsed, false
	}

	parsed.Priority = priority
	parsed.EstimatedTimeHours = hours
	parsed.Comment = comment
	return parsed, true
}
