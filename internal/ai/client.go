package ai

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/myrjola/turtlesoup/internal/errors"
	"github.com/sashabaranov/go-openai"
)

// Client implements the oracle boundary on OpenAI chat completions: puzzle
// generation, yes/no question answering, and final-guess judging.
type Client struct {
	client *openai.Client
}

func NewClient() Client {
	return Client{
		client: openai.NewClient(os.Getenv("OPENAI_API_KEY")),
	}
}

const MaxTokens = 4096

// GeneratedPuzzle is the structured result of a generation request. All three
// fields must be populated for the result to be considered well-formed.
type GeneratedPuzzle struct {
	Text     string `json:"problem"`
	Solution string `json:"answer"`
	Hint     string `json:"hint"`
}

const generatePuzzlePrompt = `あなたはウミガメのスープ、水平思考クイズの生成に長けたAIです。` +
	`以下の条件を満たす水平思考クイズの問題を生成してください。
1. 問題文は現実的な設定（例：レストラン、旅行、日常の出来事など）を背景にし、参加者が「はい」「いいえ」「わからない」で答えながら真相に迫る形式にすること。
2. 問題は理不尽すぎず、論理性を保ちながらも少しの発想の転換が必要なひねりを含むものとする。
3. 出力は、問題文、正解の要点、解答に近づくためのヒントを含むJSON形式で行い、キーは 'problem', 'answer', 'hint' とすること。
正解はある程度導きやすいものにしてください。`

func (c *Client) completion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     openai.GPT4Turbo,
			MaxTokens: MaxTokens,
			Messages:  messages,
		},
	)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("completion has no choices")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// GeneratePuzzle asks the model for a fresh puzzle as JSON with keys
// 'problem', 'answer', and 'hint'. A reply missing any of the three fields is
// an error; the caller substitutes a placeholder puzzle.
func (c *Client) GeneratePuzzle(ctx context.Context) (GeneratedPuzzle, error) {
	var puzzle GeneratedPuzzle
	reply, err := c.completion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: generatePuzzlePrompt},
	})
	if err != nil {
		return puzzle, errors.Wrap(err, "generate puzzle")
	}
	// Models occasionally wrap the JSON in a fenced code block.
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.Trim(reply, "` \n")
	if err = json.Unmarshal([]byte(reply), &puzzle); err != nil {
		return GeneratedPuzzle{}, errors.Wrap(err, "unmarshal generated puzzle")
	}
	if puzzle.Text == "" || puzzle.Solution == "" || puzzle.Hint == "" {
		return GeneratedPuzzle{}, errors.New("generated puzzle is incomplete")
	}
	return puzzle, nil
}

// AnswerQuestion replies to a participant's question given the puzzle and its
// solution. The reply is free text; the caller normalizes it against the
// verdict vocabulary.
func (c *Client) AnswerQuestion(ctx context.Context, puzzleText, solution, question string) (string, error) {
	systemPrompt := "あなたは水平思考ゲームの出題者です。次の問題とその正解を把握しています。\n" +
		"【問題】 " + puzzleText + "\n【正解】 " + solution + "\n" +
		"ユーザーからの質問に対して、「はい」「いいえ」「わからない」で答えてください。" +
		"もし、ユーザーの発言が正解に近い場合には、「正解」と答えてください。"
	reply, err := c.completion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: question},
	})
	if err != nil {
		return "", errors.Wrap(err, "answer question")
	}
	return reply, nil
}

// JudgeFinalAnswer judges a final guess against the true solution. The reply
// is expected to start with 正解 or 不正解; the caller degrades anything else
// to 不正解.
func (c *Client) JudgeFinalAnswer(ctx context.Context, guess, solution string) (string, error) {
	systemPrompt := "あなたは水平思考ゲームの判定者です。問題の正解は次の通りです。\n" +
		"【正解】 " + solution + "\n" +
		"ユーザーの解答が正解の要点を捉えている場合は「正解」、そうでない場合は「不正解」とだけ答えてください。"
	reply, err := c.completion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: guess},
	})
	if err != nil {
		return "", errors.Wrap(err, "judge final answer")
	}
	return reply, nil
}
