package quiz

import "quizgen/models"

type DuplicateQuestion struct {
	Text      string `json:"question"`
	Position1 int    `json:"position1"`
	Position2 int    `json:"position2"`
}

type DuplicateAnswer struct {
	Answer    string `json:"answer"`
	Position1 int    `json:"position1"`
	Position2 int    `json:"position2"`
}

type Duplicates struct {
	Questions []DuplicateQuestion `json:"duplicateQuestions"`
	Answers   []DuplicateAnswer   `json:"duplicateAnswers"`
}

// FindDuplicates compares every pair of positions i < j. Stems must match
// exactly; each choice of questions[i] that also appears among the choices of
// questions[j] yields its own answer entry.
func FindDuplicates(questions []models.Question) Duplicates {
	dups := Duplicates{
		Questions: []DuplicateQuestion{},
		Answers:   []DuplicateAnswer{},
	}

	for i := 0; i < len(questions); i++ {
		for j := i + 1; j < len(questions); j++ {
			if questions[i].Text == questions[j].Text {
				dups.Questions = append(dups.Questions, DuplicateQuestion{Text: questions[i].Text, Position1: i, Position2: j})
			}
			for _, answer := range questions[i].Choices {
				if containsChoice(questions[j].Choices, answer) {
					dups.Answers = append(dups.Answers, DuplicateAnswer{Answer: answer, Position1: i, Position2: j})
				}
			}
		}
	}
	return dups
}

func containsChoice(choices []string, s string) bool {
	for _, c := range choices {
		if c == s {
			return true
		}
	}
	return false
}
