package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cleberrangel/teamsync-api/internal/llm"
	"github.com/cleberrangel/teamsync-api/internal/logger"
	"github.com/cleberrangel/teamsync-api/internal/metrics"
	"github.com/cleberrangel/teamsync-api/internal/model"
	"github.com/cleberrangel/teamsync-api/internal/repository"
	"golang.org/x/sync/errgroup"
)

const (
	// ExampleLimit limita os exemplos de few-shot (pai sempre primeiro)
	ExampleLimit = 3

	// DefaultSampleCount amostras independentes por rodada
	DefaultSampleCount = 3
)

// projectFinder é a visão do repositório de projetos que a estimativa usa
type projectFinder interface {
	GetByID(ctx context.Context, id int) (*repository.Project, error)
}

// exampleSource é a visão do repositório de tasks que a estimativa usa
type exampleSource interface {
	GetByID(ctx context.Context, id, projectID int) (*repository.Task, error)
	ListSiblings(ctx context.Context, parentTaskID, projectID, limit int) ([]repository.Task, error)
	ListExamples(ctx context.Context, projectID, limit int) ([]repository.Task, error)
}

// EstimateService orquestra a rodada de estimativa: um prompt, M amostras
// independentes do LLM, votação majoritária sobre as amostras parseáveis
type EstimateService struct {
	projects    projectFinder
	tasks       exampleSource
	provider    llm.Provider
	sampleCount int
	timeout     time.Duration
}

// NewEstimateService cria um novo serviço de estimativa
func NewEstimateService(projects projectFinder, tasks exampleSource, provider llm.Provider, sampleCount int, timeout time.Duration) *EstimateService {
	if sampleCount < 1 {
		sampleCount = DefaultSampleCount
	}
	return &EstimateService{
		projects:    projects,
		tasks:       tasks,
		provider:    provider,
		sampleCount: sampleCount,
		timeout:     timeout,
	}
}

// Estimate executa uma rodada completa de estimativa para a nova task.
// Falhas por amostra são absorvidas; só falha a rodada inteira quando o
// projeto não existe, nenhuma chamada completa (ErrUpstream) ou nenhuma
// resposta é parseável (ErrAggregation). Não há retry automático da rodada.
func (s *EstimateService) Estimate(ctx context.Context, req model.EstimationRequest) (*model.AggregatedEstimate, error) {
	log := logger.Get(ctx)

	// 1. Resolve projeto e exemplos
	project, err := s.projects.GetByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}

	examples, err := s.exampleTasks(ctx, req)
	if err != nil {
		// Exemplos são enriquecimento; a rodada segue sem eles
		log.Warn().Err(err).Msg("Falha ao buscar tasks de exemplo, seguindo sem few-shot")
		examples = nil
	}

	// 2. Um único prompt para todas as amostras
	prompt := BuildEstimationPrompt(project, examples, req)

	log.Info().
		Int("project_id", req.ProjectID).
		Int("examples", len(examples)).
		Int("samples", s.sampleCount).
		Msg("Iniciando rodada de estimativa")

	// 3. M amostras independentes, em paralelo
	results := s.sample(ctx, prompt)

	// 4. Parseia cada resposta; descarta as malformadas
	var parsed []model.ParsedEstimate
	completions := 0
	for i, res := range results {
		if res.err != nil {
			continue
		}
		completions++
		est, ok := ParseEstimate(res.text)
		if !ok {
			metrics.Get().IncrementSamplesDropped()
			log.Warn().Int("sample", i).Msg("Resposta do LLM descartada no parsing")
			continue
		}
		metrics.Get().IncrementSamplesParsed()
		parsed = append(parsed, est)
	}

	if completions == 0 {
		metrics.Get().IncrementEstimateRounds(false)
		return nil, model.ErrUpstream
	}
	if len(parsed) == 0 {
		metrics.Get().IncrementEstimateRounds(false)
		return nil, model.ErrAggregation
	}

	// 5. Agrega: voto de pluralidade + média aritmética
	result := aggregate(parsed)
	metrics.Get().IncrementEstimateRounds(true)

	log.Info().
		Int("completions", completions).
		Int("parsed", len(parsed)).
		Str("priority", result.Priority).
		Str("estimated_time", result.EstimatedTime).
		Msg("Rodada de estimativa concluída")

	return result, nil
}

// sampleResult guarda o desfecho de uma amostra: texto da completion ou
// o erro de transporte que a derrubou
type sampleResult struct {
	text string
	err  error
}

// sample emite o MESMO prompt M vezes em paralelo. Amostra que falha
// (transporte ou timeout) registra o erro no slot, nunca aborta a rodada.
func (s *EstimateService) sample(ctx context.Context, prompt string) []sampleResult {
	results := make([]sampleResult, s.sampleCount)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.sampleCount; i++ {
		i := i
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, s.timeout)
			defer cancel()

			text, err := s.provider.Complete(callCtx, prompt)
			if err != nil {
				logger.Get(ctx).Warn().
					Int("sample", i).
					Err(err).
					Msg("Amostra do LLM falhou")
				results[i] = sampleResult{err: err} // falha isolada, não cancela as demais
				return nil
			}
			results[i] = sampleResult{text: text}
			return nil
		})
	}
	g.Wait()

	return results
}

// exampleTasks resolve os exemplos de few-shot: task pai primeiro, depois
// até ExampleLimit-1 irmãs; sem pai, primeiras tasks do projeto com
// prioridade e estimativa preenchidas
func (s *EstimateService) exampleTasks(ctx context.Context, req model.EstimationRequest) ([]model.ExampleTask, error) {
	if req.ParentTaskID != nil {
		parent, err := s.tasks.GetByID(ctx, *req.ParentTaskID, req.ProjectID)
		if err == nil {
			examples := []model.ExampleTask{parent.AsExample()}
			siblings, err := s.tasks.ListSiblings(ctx, *req.ParentTaskID, req.ProjectID, ExampleLimit-1)
			if err != nil {
				return examples, nil
			}
			for _, sib := range siblings {
				examples = append(examples, sib.AsExample())
			}
			if len(examples) > ExampleLimit {
				examples = examples[:ExampleLimit]
			}
			return examples, nil
		}
		if err != model.ErrTaskNotFound {
			return nil, err
		}
		// Pai inexistente: cai para exemplos genéricos do projeto
	}

	tasks, err := s.tasks.ListExamples(ctx, req.ProjectID, ExampleLimit)
	if err != nil {
		return nil, err
	}
	examples := make([]model.ExampleTask, 0, len(tasks))
	for _, t := range tasks {
		examples = append(examples, t.AsExample())
	}
	return examples, nil
}

// aggregate reduz as amostras parseadas a um único resultado: prioridade por
// pluralidade (empate resolvido pela primeira ocorrência), tempo pela média,
// comentário da primeira amostra válida
func aggregate(parsed []model.ParsedEstimate) *model.AggregatedEstimate {
	counts := make(map[string]int)
	var order []string
	var totalHours float64

	for _, p := range parsed {
		if counts[p.Priority] == 0 {
			order = append(order, p.Priority)
		}
		counts[p.Priority]++
		totalHours += p.EstimatedTimeHours
	}

	winner := order[0]
	for _, priority := range order {
		if counts[priority] > counts[winner] {
			winner = priority
		}
	}

	mean := totalHours / float64(len(parsed))

	return &model.AggregatedEstimate{
		Priority:      winner,
		EstimatedTime: FormatHours(mean),
		Comment:       parsed[0].Comment,
	}
}

// FormatHours renderiza horas como "X.X hours" ou, a partir de 24h,
// como "X.X days" com uma casa decimal
func FormatHours(hours float64) string {
	if hours >= 24 {
		return fmt.Sprintf("%.1f days", hours/24)
	}
	return fmt.Sprintf("%.1f hours", hours)
}
