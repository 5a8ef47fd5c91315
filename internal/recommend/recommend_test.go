package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"expo-floorplan/internal/exhibition"
)

type mockRecommender struct {
	mock.Mock
}

func (m *mockRecommender) Recommend(ctx context.Context, req Request) (Response, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(Response), args.Error(1)
}

type mockChat struct {
	mock.Mock
}

func (m *mockChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(openai.ChatCompletionResponse), args.Error(1)
}

func sampleStalls() []*exhibition.Stall {
	return []*exhibition.Stall{
		{ID: "1", Category: "Electronics", Segment: "Luxury"},
		{ID: "2", Category: "Food", Segment: "Basic"},
		{ID: "3", Category: "Electronics", Segment: ""},
		{ID: "4", Category: "", Segment: "Combo"},
		nil,
		{ID: "5", Category: "Art", Segment: "Luxury"},
	}
}

func TestBuildRequest(t *testing.T) {
	all := sampleStalls()
	req := BuildRequest(all[0], all)

	assert.Equal(t, "Electronics", req.Category)
	assert.Equal(t, "Luxury", req.Segment)
	assert.Equal(t, []string{"Electronics", "Food", "Art"}, req.AvailableCategories)
	assert.Equal(t, []string{"Luxury", "Basic", "Combo"}, req.AvailableSegments)
}

func TestPromptIncludesRequest(t *testing.T) {
	all := sampleStalls()
	p, err := Prompt(BuildRequest(all[1], all))
	require.NoError(t, err)

	assert.Contains(t, p, "Available stall categories: Electronics, Food, Art")
	assert.Contains(t, p, "Available stall segments: Luxury, Basic, Combo")
	assert.Contains(t, p, "Selected stall category: Food")
	assert.Contains(t, p, "Selected stall segment: Basic")
}

func TestServiceReturnsText(t *testing.T) {
	all := sampleStalls()
	backend := new(mockRecommender)
	backend.On("Recommend", mock.Anything, BuildRequest(all[0], all)).
		Return(Response{Text: "Visit D-401 Future Gadgets."}, nil)

	svc := NewService(backend, time.Second, nil)
	text, err := svc.Recommend(context.Background(), all[0], all)
	require.NoError(t, err)
	assert.Equal(t, "Visit D-401 Future Gadgets.", text)
	backend.AssertExpectations(t)
}

func TestServiceHidesBackendErrors(t *testing.T) {
	all := sampleStalls()
	for name, tc := range map[string]struct {
		resp Response
		err  error
	}{
		"error": {err: errors.New("quota exceeded")},
		"empty": {resp: Response{}},
	} {
		t.Run(name, func(t *testing.T) {
			backend := new(mockRecommender)
			backend.On("Recommend", mock.Anything, mock.Anything).Return(tc.resp, tc.err)

			text, err := NewService(backend, time.Second, nil).Recommend(context.Background(), all[0], all)
			assert.Empty(t, text)
			assert.ErrorIs(t, err, ErrUnavailable)
			assert.Equal(t, UnavailableMessage, err.Error())
		})
	}
}

func TestServiceAppliesTimeout(t *testing.T) {
	backend := new(mockRecommender)
	backend.On("Recommend", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(Response{}, context.DeadlineExceeded)

	start := time.Now()
	_, err := NewService(backend, 20*time.Millisecond, nil).Recommend(context.Background(), &exhibition.Stall{}, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestDisabledBackend(t *testing.T) {
	_, err := Disabled{}.Recommend(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = NewService(nil, 0, nil).Recommend(context.Background(), &exhibition.Stall{}, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestOpenAIRecommend(t *testing.T) {
	chat := new(mockChat)
	chat.On("CreateChatCompletion", mock.Anything, mock.MatchedBy(func(req openai.ChatCompletionRequest) bool {
		return req.Model == "test-model" && len(req.Messages) == 1 &&
			req.Messages[0].Role == openai.ChatMessageRoleUser
	})).Return(openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "  Try C-301.  "}}},
	}, nil)

	resp, err := newOpenAI(chat, "test-model").Recommend(context.Background(), Request{Category: "Art"})
	require.NoError(t, err)
	assert.Equal(t, "Try C-301.", resp.Text)
	chat.AssertExpectations(t)
}

func TestOpenAINoChoices(t *testing.T) {
	chat := new(mockChat)
	chat.On("CreateChatCompletion", mock.Anything, mock.Anything).Return(openai.ChatCompletionResponse{}, nil)

	_, err := newOpenAI(chat, "").Recommend(context.Background(), Request{})
	assert.Error(t, err)
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{})
	assert.Error(t, err)

	o, err := NewOpenAI(OpenAIConfig{APIKey: "k", BaseURL: "http://localhost:1/v1"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, o.model)
}
