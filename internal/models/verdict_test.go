package models_test

import (
	"testing"

	"github.com/myrjola/turtlesoup/internal/models"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVerdict(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  models.Verdict
	}{
		{name: "yes", reply: "はい", want: models.VerdictYes},
		{name: "yes with elaboration", reply: "はい、その通りです。", want: models.VerdictYes},
		{name: "no", reply: "いいえ", want: models.VerdictNo},
		{name: "unknown", reply: "わからない", want: models.VerdictUnknown},
		{name: "correct", reply: "正解です！", want: models.VerdictCorrect},
		{name: "judging token is not question vocabulary", reply: "不正解です", want: models.VerdictUnknown},
		{name: "english yes alias", reply: "Yes, it is.", want: models.VerdictYes},
		{name: "english no alias", reply: "no", want: models.VerdictNo},
		{name: "leading whitespace", reply: "  はい", want: models.VerdictYes},
		{name: "free text degrades", reply: "それは面白い質問ですね", want: models.VerdictUnknown},
		{name: "empty degrades", reply: "", want: models.VerdictUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, models.NormalizeVerdict(tt.reply))
		})
	}
}

func TestNormalizeJudgement(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  models.Verdict
	}{
		{name: "correct", reply: "正解", want: models.VerdictCorrect},
		{name: "incorrect", reply: "不正解", want: models.VerdictIncorrect},
		{name: "incorrect with elaboration not read as correct", reply: "不正解です。正解は別にあります。", want: models.VerdictIncorrect},
		{name: "english correct", reply: "Correct!", want: models.VerdictCorrect},
		{name: "english incorrect", reply: "Incorrect, sorry.", want: models.VerdictIncorrect},
		{name: "yes is not a judgement", reply: "はい", want: models.VerdictIncorrect},
		{name: "garbage degrades to incorrect", reply: "maybe?", want: models.VerdictIncorrect},
		{name: "empty degrades to incorrect", reply: "", want: models.VerdictIncorrect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, models.NormalizeJudgement(tt.reply))
		})
	}
}
