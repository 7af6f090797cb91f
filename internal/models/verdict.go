package models

import "strings"

// Verdict is the canonical vocabulary for oracle replies shown in the
// transcript. The tokens follow the original Japanese game convention.
type Verdict = string

const (
	VerdictYes       Verdict = "はい"
	VerdictNo        Verdict = "いいえ"
	VerdictUnknown   Verdict = "わからない"
	VerdictCorrect   Verdict = "正解"
	VerdictIncorrect Verdict = "不正解"
)

// questionVerdicts is the vocabulary a question reply may resolve to. 不正解
// belongs to judging only.
var questionVerdicts = []Verdict{VerdictYes, VerdictNo, VerdictUnknown, VerdictCorrect}

// englishAliases fold English oracle replies onto the canonical tokens.
var englishAliases = map[string]Verdict{
	"yes":     VerdictYes,
	"no":      VerdictNo,
	"unknown": VerdictUnknown,
	"correct": VerdictCorrect,
}

// NormalizeVerdict matches a free-text oracle reply by prefix against the
// question verdict vocabulary. Unrecognized replies degrade to わからない so
// that an unparseable oracle answer never blocks the transcript.
func NormalizeVerdict(reply string) Verdict {
	reply = strings.TrimSpace(reply)
	for _, verdict := range questionVerdicts {
		if strings.HasPrefix(reply, verdict) {
			return verdict
		}
	}
	lowered := strings.ToLower(reply)
	for alias, verdict := range englishAliases {
		if strings.HasPrefix(lowered, alias) {
			return verdict
		}
	}
	return VerdictUnknown
}

// NormalizeJudgement matches a judging reply against 正解/不正解. The 不正解
// check runs first so a reply starting with 不正解 is never read as 正解.
// Anything unrecognized degrades to 不正解 so that a failed judging call still
// resolves the submission.
func NormalizeJudgement(reply string) Verdict {
	trimmed := strings.TrimSpace(reply)
	if strings.HasPrefix(trimmed, VerdictIncorrect) ||
		strings.HasPrefix(strings.ToLower(trimmed), "incorrect") {
		return VerdictIncorrect
	}
	if NormalizeVerdict(reply) == VerdictCorrect {
		return VerdictCorrect
	}
	return VerdictIncorrect
}
