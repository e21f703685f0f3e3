package notify

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/Chris-Buzz/Daily-Planner/internal/domain"
)

var inspirationalMessages = []string{
	"Small steps every day add up to big results.",
	"Focus on progress, not perfection.",
	"The best way to get something done is to begin.",
	"You don't have to be great to start, but you have to start to be great.",
	"Done is better than perfect.",
	"One task at a time. You've got this.",
}

// ReminderMessage builds the notification for a matched task reminder.
func ReminderMessage(task *domain.Task, m domain.Match) Message {
	mins := int(m.DeltaMin) // rounded down for human-facing text
	var title string
	switch {
	case m.Imminent:
		title = fmt.Sprintf("STARTING NOW! %q begins in %d minute(s)", task.Title, mins)
	case m.Tier == domain.TierImminent:
		title = fmt.Sprintf("URGENT: %q starts in %d minutes", task.Title, mins)
	case m.Tier == domain.TierSoon:
		title = fmt.Sprintf("%q starts soon, in %d minutes", task.Title, mins)
	default:
		title = fmt.Sprintf("Upcoming: %q in %d minutes", task.Title, mins)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Time: %s\n", domain.FormatClock12h(task.StartTime))
	if task.Day != "" && task.Day != domain.DayToday {
		fmt.Fprintf(&b, "Day: %s\n", task.Day)
	}
	if task.Description != "" {
		fmt.Fprintf(&b, "%s\n", task.Description)
	}
	b.WriteString("Good luck with your task!")
	return Message{Title: title, Body: b.String()}
}

// SummaryMessage builds the once-daily recap of today's tasks.
func SummaryMessage(completed, pending []domain.Task) Message {
	total := len(completed) + len(pending)
	title := fmt.Sprintf("Daily Summary - %d tasks today (%d completed)", total, len(completed))

	var b strings.Builder
	fmt.Fprintf(&b, "Completed: %d, pending: %d, total: %d.\n", len(completed), len(pending), total)
	if len(pending) > 0 {
		next := pending[0]
		line := next.Title
		if next.StartTime != "" {
			line += " at " + domain.FormatClock12h(next.StartTime)
		}
		fmt.Fprintf(&b, "Next up: %s.\n", line)
	} else if total == 0 {
		b.WriteString("No tasks scheduled for today. Great day to plan ahead!\n")
	}
	b.WriteString(inspirationalMessages[rand.Intn(len(inspirationalMessages))])
	return Message{Title: title, Body: b.String()}
}

// PrepMessage builds a part-of-day preparation notice.
func PrepMessage(kind string, taskCount int) Message {
	var text string
	switch kind {
	case "morning_prep":
		text = fmt.Sprintf("Good morning! You have %d task(s) scheduled for this morning. Have a productive day!", taskCount)
	case "midday_prep":
		text = fmt.Sprintf("Hope your morning went well! You have %d task(s) this afternoon. Keep it up!", taskCount)
	default:
		text = fmt.Sprintf("As the day winds down, you have %d task(s) scheduled for this evening.", taskCount)
	}
	return Message{Title: "Daily Preparation", Body: text}
}

// InspirationMessage builds a sporadic motivational note.
func InspirationMessage(taskCount int) Message {
	body := inspirationalMessages[rand.Intn(len(inspirationalMessages))]
	if taskCount > 3 {
		body += fmt.Sprintf(" You've got %d tasks today and you're handling it.", taskCount)
	}
	return Message{Title: "A Little Motivation For Your Day", Body: body}
}
