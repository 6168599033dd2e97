package quiz

import (
	"encoding/xml"
	"fmt"
	"strings"

	"quizgen/models"
)

const maxAikenChoices = 26

// Aiken is line based; a line break inside a stem or a choice would start a
// new record.
var aikenLineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// ToAiken renders questions in Aiken format. Letters follow the position of
// each choice; the ANSWER line names the first choice equal to the correct
// one.
func ToAiken(questions []models.Question) (string, error) {
	var sb strings.Builder
	for i := range questions {
		q := &questions[i]
		if len(q.Choices) > maxAikenChoices {
			return "", fmt.Errorf("question %d has %d choices, Aiken allows at most %d", i, len(q.Choices), maxAikenChoices)
		}
		correct := q.CorrectChoiceIndex()
		if correct < 0 {
			return "", fmt.Errorf("question %d: correct choice %q is not among its choices", i, q.CorrectChoice)
		}

		sb.WriteString(aikenLineBreaks.Replace(q.Text))
		sb.WriteByte('\n')
		for idx, choice := range q.Choices {
			fmt.Fprintf(&sb, "%c. %s\n", 'A'+idx, aikenLineBreaks.Replace(choice))
		}
		fmt.Fprintf(&sb, "ANSWER: %c\n\n", 'A'+correct)
	}
	return sb.String(), nil
}

type moodleQuiz struct {
	XMLName   xml.Name         `xml:"quiz"`
	Questions []moodleQuestion `xml:"question"`
}

type moodleQuestion struct {
	Type         string             `xml:"type,attr"`
	Name         moodleText         `xml:"name"`
	QuestionText moodleQuestionText `xml:"questiontext"`
	Answers      []moodleAnswer     `xml:"answer"`
}

type moodleText struct {
	Text string `xml:"text"`
}

type moodleQuestionText struct {
	Format string      `xml:"format,attr"`
	Text   moodleCDATA `xml:"text"`
}

type moodleCDATA struct {
	Value string `xml:",cdata"`
}

type moodleAnswer struct {
	Fraction string     `xml:"fraction,attr"`
	Text     string     `xml:"text"`
	Feedback moodleText `xml:"feedback"`
}

// xmlChars replaces invalid UTF-8 and runes outside the XML Char production
// with U+FFFD. CDATA content is written verbatim by encoding/xml.
func xmlChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r >= 0x20 && r <= 0xD7FF,
			r >= 0xE000 && r <= 0xFFFD,
			r >= 0x10000 && r <= 0x10FFFF:
			return r
		}
		return '\uFFFD'
	}, strings.ToValidUTF8(s, "\uFFFD"))
}

// ToMoodleXML renders questions as a Moodle XML multichoice quiz.
func ToMoodleXML(questions []models.Question) (string, error) {
	doc := moodleQuiz{Questions: make([]moodleQuestion, 0, len(questions))}
	for i := range questions {
		q := &questions[i]
		mq := moodleQuestion{
			Type:         "multichoice",
			Name:         moodleText{Text: q.Text},
			QuestionText: moodleQuestionText{Format: "html", Text: moodleCDATA{Value: xmlChars(q.Text)}},
			Answers:      make([]moodleAnswer, 0, len(q.Choices)),
		}
		for _, choice := range q.Choices {
			answer := moodleAnswer{Fraction: "0", Text: choice, Feedback: moodleText{Text: "Incorrect."}}
			if choice == q.CorrectChoice {
				answer.Fraction = "100"
				answer.Feedback.Text = "Correct!"
			}
			mq.Answers = append(mq.Answers, answer)
		}
		doc.Questions = append(doc.Questions, mq)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode moodle xml: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}
