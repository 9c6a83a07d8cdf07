package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/expendio/foh-app/models"
	"github.com/expendio/foh-app/utils"
	openai "github.com/sashabaranov/go-openai"
)

const insightsSystemPrompt = `Eres un analista de datos experto para un restaurante llamado 'Expendio Cervecería Popular'. Tu tarea es analizar los datos de visitas de clientes y responder preguntas en español de forma clara, concisa y amigable.
- Utiliza los datos proporcionados en formato JSON.
- Proporciona insights accionables para el negocio cuando sea posible.
- Formatea tus respuestas usando markdown simple (negritas con **, listas con -) para una mejor legibilidad.
- No menciones que eres un modelo de IA. Actúa como un asistente analista.
- Sé breve y directo en tus respuestas.`

// ChatClient is the slice of the OpenAI client the service needs, so tests
// can stub the external call.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// InsightsService answers free-text questions about the visit report through
// a hosted chat-completion endpoint. The service is an opaque collaborator:
// any failure surfaces as ErrInsightsUnavailable, never a partial answer.
type InsightsService struct {
	Client ChatClient
	Model  string
}

func NewInsightsService() *InsightsService {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}

	svc := &InsightsService{Model: model}
	if apiKey == "" {
		utils.ErrorLogger.Println("OPENAI_API_KEY not set, report insights disabled")
		return svc
	}
	svc.Client = openai.NewClient(apiKey)
	return svc
}

type insightVisit struct {
	Llegada  string   `json:"llegada"`
	Salida   *string  `json:"salida"`
	Personas int      `json:"personas"`
	Consumo  *float64 `json:"consumo"`
	Cliente  string   `json:"cliente"`
}

// Ask sends the visits plus the question and returns the model's answer.
func (is *InsightsService) Ask(ctx context.Context, visits []models.Visit, question string) (string, error) {
	if is.Client == nil {
		return "", ErrInsightsUnavailable
	}

	data, err := formatVisits(visits)
	if err != nil {
		utils.ErrorLogger.Printf("Error encoding visits for insights: %v", err)
		return "", ErrInsightsUnavailable
	}

	prompt := fmt.Sprintf("Aquí están los datos de las visitas:\n%s\n\nPor favor, responde la siguiente pregunta: %q", data, question)

	resp, err := is.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: is.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: insightsSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		utils.ErrorLogger.Printf("Insights call failed: %v", err)
		return "", ErrInsightsUnavailable
	}
	if len(resp.Choices) == 0 {
		utils.ErrorLogger.Println("Insights call returned no choices")
		return "", ErrInsightsUnavailable
	}

	return resp.Choices[0].Message.Content, nil
}

func formatVisits(visits []models.Visit) (string, error) {
	simplified := make([]insightVisit, 0, len(visits))
	for _, v := range visits {
		iv := insightVisit{
			Llegada:  v.ArrivalTime.Format("2006-01-02T15:04:05"),
			Personas: v.PartySize,
			Consumo:  v.TotalSpend,
			Cliente:  v.Customer.Name,
		}
		if v.DepartureTime != nil {
			s := v.DepartureTime.Format("2006-01-02T15:04:05")
			iv.Salida = &s
		}
		simplified = append(simplified, iv)
	}
	data, err := json.MarshalIndent(simplified, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
